package main

import (
	"context"
	"flag"
	"log"
	"os"

	"clientdesk/internal/config"
	"clientdesk/internal/db"
	"clientdesk/internal/fieldcrypt"
	"clientdesk/internal/importer"
	addressrepo "clientdesk/internal/repository/address"
	clientrepo "clientdesk/internal/repository/client"
	dependantrepo "clientdesk/internal/repository/dependant"
	documentrepo "clientdesk/internal/repository/document"
	taxrecordrepo "clientdesk/internal/repository/taxrecord"
	clientsvc "clientdesk/internal/service/client"
)

func main() {
	logger := log.New(os.Stdout, "[import] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	var (
		path      = flag.String("file", "", "path to the client CSV export")
		actor     = flag.String("actor", "import", "actor id recorded on created rows")
		batchSize = flag.Int("batch", 100, "rows submitted per bulk request")
	)
	flag.Parse()
	if *path == "" {
		logger.Fatal("-file is required")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	codec, err := fieldcrypt.New(cfg.SINKey)
	if err != nil {
		logger.Fatalf("init sin codec: %v", err)
	}

	clientService := clientsvc.New(pool, clientsvc.Deps{
		Clients:    clientrepo.NewPostgres(logger),
		Addresses:  addressrepo.NewPostgres(),
		Dependants: dependantrepo.NewPostgres(),
		TaxRecords: taxrecordrepo.NewPostgres(),
		Documents:  documentrepo.NewPostgres(),
		Codec:      codec,
	}, logger)

	f, err := os.Open(*path)
	if err != nil {
		logger.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	n, err := importer.NewCSVImporter(f, clientService, *actor, *batchSize).Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d clients: %v", n, err)
	}
	logger.Printf("imported %d clients", n)
}
