package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	documentsvc "clientdesk/internal/service/document"
)

func uploadDocumentHandler(svc *documentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file part required"})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file part"})
			return
		}
		defer f.Close()

		var note *string
		if v := c.PostForm("note"); v != "" {
			note = &v
		}

		doc, err := svc.Upload(c.Request.Context(), documentsvc.UploadInput{
			TaxRecordID: c.Param("id"),
			FileName:    fileHeader.Filename,
			Note:        note,
			Body:        f,
		}, actorID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, doc)
	}
}

func listDocumentsHandler(svc *documentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := svc.ListByTaxRecord(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, docs)
	}
}

func downloadDocumentHandler(svc *documentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, rc, err := svc.Open(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		defer rc.Close()

		c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
		c.Header("X-Checksum-Sha256", doc.Checksum)
		c.DataFromReader(http.StatusOK, -1, "application/octet-stream", rc, nil)
	}
}

func deleteDocumentHandler(svc *documentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
