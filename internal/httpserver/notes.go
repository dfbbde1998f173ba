package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	notesvc "clientdesk/internal/service/note"
)

func createNoteHandler(svc *notesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in notesvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		note, err := svc.Create(c.Request.Context(), in, actorID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, note)
	}
}

type updateNoteRequest struct {
	Body string `json:"body" binding:"required"`
}

func updateNoteHandler(svc *notesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in updateNoteRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		note, err := svc.Update(c.Request.Context(), c.Param("id"), in.Body, actorID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, note)
	}
}

func deleteNoteHandler(svc *notesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listClientNotesHandler(svc *notesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		notes, err := svc.ListByClient(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, notes)
	}
}

func listBusinessNotesHandler(svc *notesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		notes, err := svc.ListByBusiness(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, notes)
	}
}

func listTaxRecordNotesHandler(svc *notesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		notes, err := svc.ListByTaxRecord(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, notes)
	}
}
