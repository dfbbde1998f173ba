package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	businesssvc "clientdesk/internal/service/business"
	clientsvc "clientdesk/internal/service/client"
	documentsvc "clientdesk/internal/service/document"
	notesvc "clientdesk/internal/service/note"
	shareholdersvc "clientdesk/internal/service/shareholder"
	taxrecordsvc "clientdesk/internal/service/taxrecord"
)

// Deps carries the services the handlers dispatch to.
type Deps struct {
	Clients      *clientsvc.Service
	Businesses   *businesssvc.Service
	Shareholders *shareholdersvc.Service
	TaxRecords   *taxrecordsvc.Service
	Documents    *documentsvc.Service
	Notes        *notesvc.Service
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(corsOrigins) > 0 {
		corsCfg.AllowOrigins = corsOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, actorHeader)
	corsCfg.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api/v1", requireActor())

	clients := api.Group("/clients")
	clients.GET("", listClientsHandler(deps.Clients))
	clients.POST("", createClientHandler(deps.Clients))
	clients.POST("/bulk", createClientsBulkHandler(deps.Clients))
	clients.GET("/:id", getClientHandler(deps.Clients))
	clients.PATCH("/:id", patchClientHandler(deps.Clients))
	clients.DELETE("/:id", deleteClientHandler(deps.Clients))
	clients.POST("/:id/spouse", linkSpouseHandler(deps.Clients))
	clients.DELETE("/:id/spouse", unlinkSpouseHandler(deps.Clients))
	clients.POST("/:id/tax-records", createPersonalTaxRecordHandler(deps.TaxRecords))
	clients.GET("/:id/notes", listClientNotesHandler(deps.Notes))

	businesses := api.Group("/businesses")
	businesses.GET("", listBusinessesHandler(deps.Businesses))
	businesses.POST("", createBusinessHandler(deps.Businesses))
	businesses.GET("/:id", getBusinessHandler(deps.Businesses))
	businesses.PATCH("/:id", patchBusinessHandler(deps.Businesses))
	businesses.DELETE("/:id", deleteBusinessHandler(deps.Businesses))
	businesses.POST("/:id/shareholders", createShareholderHandler(deps.Shareholders))
	businesses.PATCH("/:id/shareholders/:shareholderId", patchShareholderHandler(deps.Shareholders))
	businesses.DELETE("/:id/shareholders/:shareholderId", deleteShareholderHandler(deps.Shareholders))
	businesses.POST("/:id/tax-records", createBusinessTaxRecordHandler(deps.TaxRecords))
	businesses.GET("/:id/notes", listBusinessNotesHandler(deps.Notes))

	taxRecords := api.Group("/tax-records")
	taxRecords.DELETE("/:id", deleteTaxRecordHandler(deps.TaxRecords))
	taxRecords.GET("/:id/documents", listDocumentsHandler(deps.Documents))
	taxRecords.POST("/:id/documents", uploadDocumentHandler(deps.Documents))
	taxRecords.GET("/:id/notes", listTaxRecordNotesHandler(deps.Notes))

	documents := api.Group("/documents")
	documents.GET("/:id", downloadDocumentHandler(deps.Documents))
	documents.DELETE("/:id", deleteDocumentHandler(deps.Documents))

	notes := api.Group("/notes")
	notes.POST("", createNoteHandler(deps.Notes))
	notes.PUT("/:id", updateNoteHandler(deps.Notes))
	notes.DELETE("/:id", deleteNoteHandler(deps.Notes))

	return router
}
