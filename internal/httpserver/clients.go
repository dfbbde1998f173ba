package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	clientsvc "clientdesk/internal/service/client"
)

func listClientsHandler(svc *clientsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := parseListQuery(c)
		clients, total, err := svc.List(c.Request.Context(), clientsvc.ListInput{
			Page:   q.Page,
			Limit:  q.Limit,
			Search: q.Search,
			Sort:   q.Sort,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, listResponse{Items: clients, Total: total, Page: q.Page, Limit: q.Limit})
	}
}

func createClientHandler(svc *clientsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in clientsvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		id, err := svc.Create(c.Request.Context(), in, actorID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

func createClientsBulkHandler(svc *clientsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var inputs []clientsvc.CreateInput
		if err := c.ShouldBindJSON(&inputs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		summary, err := svc.CreateBulk(c.Request.Context(), inputs, actorID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		status := http.StatusCreated
		if summary.Failed > 0 {
			status = http.StatusMultiStatus
		}
		c.JSON(status, summary)
	}
}

func getClientHandler(svc *clientsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := svc.GetDetail(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func patchClientHandler(svc *clientsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in clientsvc.PatchInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		updated, err := svc.Patch(c.Request.Context(), c.Param("id"), in, actorID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func deleteClientHandler(svc *clientsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type linkSpouseRequest struct {
	SpouseClientID string     `json:"spouseClientId" binding:"required"`
	DateOfMarriage *time.Time `json:"dateOfMarriage,omitempty"`
}

func linkSpouseHandler(svc *clientsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in linkSpouseRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		err := svc.LinkSpouse(c.Request.Context(), c.Param("id"), in.SpouseClientID, in.DateOfMarriage, actorID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func unlinkSpouseHandler(svc *clientsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.UnlinkSpouse(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
