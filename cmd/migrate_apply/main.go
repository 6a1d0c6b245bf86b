package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"task_manager/internal/db"
	"task_manager/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up, down or status")
	flag.Parse()

	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	var err error
	switch *cmd {
	case "up":
		err = db.ApplyMigrations(ctx, dsn)
	case "down":
		err = db.RollbackMigration(ctx, dsn)
	case "status":
		err = db.MigrationStatus(ctx, dsn)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", *cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("migration failed", "cmd", *cmd, "error", err)
	}
	logger.Info("migration done", "cmd", *cmd)
}
