package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	taxrecordsvc "clientdesk/internal/service/taxrecord"
)

func createBusinessTaxRecordHandler(svc *taxrecordsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in taxrecordsvc.CreateBusinessInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		rec, err := svc.CreateBusiness(c.Request.Context(), c.Param("id"), in, actorID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rec)
	}
}

func createPersonalTaxRecordHandler(svc *taxrecordsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in taxrecordsvc.CreatePersonalInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		rec, err := svc.CreatePersonal(c.Request.Context(), c.Param("id"), in, actorID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rec)
	}
}

func deleteTaxRecordHandler(svc *taxrecordsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
