package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"clientdesk/internal/blobstore"
	"clientdesk/internal/config"
	"clientdesk/internal/db"
	"clientdesk/internal/fieldcrypt"
	"clientdesk/internal/httpserver"
	addressrepo "clientdesk/internal/repository/address"
	businessrepo "clientdesk/internal/repository/business"
	clientrepo "clientdesk/internal/repository/client"
	dependantrepo "clientdesk/internal/repository/dependant"
	documentrepo "clientdesk/internal/repository/document"
	noterepo "clientdesk/internal/repository/note"
	shareholderrepo "clientdesk/internal/repository/shareholder"
	taxprofilerepo "clientdesk/internal/repository/taxprofile"
	taxrecordrepo "clientdesk/internal/repository/taxrecord"
	businesssvc "clientdesk/internal/service/business"
	clientsvc "clientdesk/internal/service/client"
	documentsvc "clientdesk/internal/service/document"
	notesvc "clientdesk/internal/service/note"
	shareholdersvc "clientdesk/internal/service/shareholder"
	taxrecordsvc "clientdesk/internal/service/taxrecord"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	codec, err := fieldcrypt.New(cfg.SINKey)
	if err != nil {
		logger.Fatalf("init sin codec: %v", err)
	}
	blobs, err := blobstore.NewDiskStore(cfg.BlobDir)
	if err != nil {
		logger.Fatalf("init blob store: %v", err)
	}

	clients := clientrepo.NewPostgres(logger)
	businesses := businessrepo.NewPostgres(logger)
	addresses := addressrepo.NewPostgres()
	dependants := dependantrepo.NewPostgres()
	shareholders := shareholderrepo.NewPostgres()
	taxProfiles := taxprofilerepo.NewPostgres()
	taxRecords := taxrecordrepo.NewPostgres()
	documents := documentrepo.NewPostgres()
	notes := noterepo.NewPostgres()

	clientService := clientsvc.New(dbpool, clientsvc.Deps{
		Clients:    clients,
		Addresses:  addresses,
		Dependants: dependants,
		TaxRecords: taxRecords,
		Documents:  documents,
		Codec:      codec,
	}, logger)
	businessService := businesssvc.New(dbpool, businesssvc.Deps{
		Businesses:   businesses,
		Clients:      clients,
		Addresses:    addresses,
		Shareholders: shareholders,
		TaxProfiles:  taxProfiles,
		TaxRecords:   taxRecords,
		Documents:    documents,
		Codec:        codec,
	}, logger)
	shareholderService := shareholdersvc.New(dbpool, shareholdersvc.Deps{
		Shareholders: shareholders,
		Businesses:   businesses,
		Clients:      clients,
		Codec:        codec,
	}, logger)
	taxRecordService := taxrecordsvc.New(dbpool, taxrecordsvc.Deps{
		Records:     taxRecords,
		TaxProfiles: taxProfiles,
		Businesses:  businesses,
		Clients:     clients,
	}, logger)
	documentService := documentsvc.New(dbpool, documentsvc.Deps{
		Documents: documents,
		Records:   taxRecords,
		Blobs:     blobs,
	}, logger)
	noteService := notesvc.New(dbpool, notes, logger)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Clients:      clientService,
		Businesses:   businessService,
		Shareholders: shareholderService,
		TaxRecords:   taxRecordService,
		Documents:    documentService,
		Notes:        noteService,
	}, cfg.CORSOrigins)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
