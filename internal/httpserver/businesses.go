package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clientdesk/internal/domain"
	businesssvc "clientdesk/internal/service/business"
	shareholdersvc "clientdesk/internal/service/shareholder"
)

func listBusinessesHandler(svc *businesssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := parseListQuery(c)
		businesses, total, err := svc.List(c.Request.Context(), businesssvc.ListInput{
			Page:   q.Page,
			Limit:  q.Limit,
			Search: q.Search,
			Sort:   q.Sort,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, listResponse{Items: businesses, Total: total, Page: q.Page, Limit: q.Limit})
	}
}

func createBusinessHandler(svc *businesssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in businesssvc.CreateInput
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

func getBusinessHandler(svc *businesssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := svc.GetDetail(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func patchBusinessHandler(svc *businesssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in businesssvc.PatchInput
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

func deleteBusinessHandler(svc *businesssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func createShareholderHandler(svc *shareholdersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in domain.ShareholderInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		id, err := svc.Create(c.Request.Context(), c.Param("id"), in, actorID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

func patchShareholderHandler(svc *shareholdersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in shareholdersvc.PatchInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		err := svc.Patch(c.Request.Context(), c.Param("id"), c.Param("shareholderId"), in, actorID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func deleteShareholderHandler(svc *shareholdersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.Delete(c.Request.Context(), c.Param("id"), c.Param("shareholderId"), actorID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
