// Command-line tool to clean the database by dropping all tables in the public schema.
// When GCS_BUCKET is set the uploaded resumes are removed from the bucket too.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/XevilA/spu-nexus-sub000/internal/config"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/logger"
	"github.com/XevilA/spu-nexus-sub000/internal/storage"
)

func main() {
	log := logger.New()
	cfg := config.Load()

	fmt.Println("WARNING: This command will DROP ALL TABLES in the 'public' schema of your database.")
	if cfg.GCSBucket != "" {
		fmt.Printf("Every object under %q in bucket %s will be deleted as well.\n", storage.ResumeObjectPrefix+"/", cfg.GCSBucket)
	}
	fmt.Println("This action is irreversible. Do you want to continue? (yes/no): ")

	// Ask for confirmation
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		log.WithError(err).Fatal("Failed to read input")
	}
	input = strings.TrimSpace(strings.ToLower(input))

	if input != "yes" {
		fmt.Println("Operation cancelled.")
		return
	}

	db, err := database.NewDBInstance(database.NewDBConfig(cfg))
	if err != nil {
		log.WithError(err).Fatal("Database failed to initialize")
	}
	defer func() { _ = db.Close() }()

	// SQL command to drop all tables
	sql := `
	DO $$
		DECLARE
			r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
				EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`

	if err := db.Exec(sql).Error; err != nil {
		log.WithError(err).Fatal("Failed to execute drop command")
	}
	fmt.Println("All tables dropped successfully.")

	if cfg.GCSBucket == "" {
		return
	}

	ctx := context.Background()
	client, err := storage.NewCloudStorageClient(ctx, cfg.GCSBucket)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to cloud storage")
	}
	defer func() { _ = client.Close() }()

	deleted, err := client.DeletePrefix(ctx, storage.ResumeObjectPrefix+"/")
	if err != nil {
		log.WithError(err).Fatal("Failed to delete stored resumes")
	}
	fmt.Printf("%d stored resumes deleted.\n", deleted)
}
