package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"task_manager/internal/db"
	"task_manager/internal/domain"
	"task_manager/internal/logger"
	"task_manager/internal/repository"
	"task_manager/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	n := flag.Int("n", 10, "number of tasks to insert")
	flag.Parse()

	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, db.Options{DSN: dsn})
	if err != nil {
		logger.Fatal("connect database", "error", err)
	}
	defer pool.Close()

	gateway := db.NewGateway(pool)
	repo := repository.NewTaskRepository()

	var total int64
	err = gateway.WithSession(ctx, func(q db.Querier) error {
		for i := 1; i <= *n; i++ {
			desc := fmt.Sprintf("seeded task %d", i)
			if _, err := repo.Create(ctx, q, domain.NewTask{Name: fmt.Sprintf("Task %d", i), Description: &desc}); err != nil {
				return err
			}
		}
		var err error
		total, err = repo.Count(ctx, q)
		return err
	})
	if err != nil {
		logger.Fatal("seed tasks", "error", err)
	}
	logger.Info("tasks seeded", "inserted", *n, "total", total)

	// print a write token when the guard is on
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		token, err := service.NewTokenManager(secret, 0).Generate("seed_tasks")
		if err != nil {
			logger.Fatal("generate token", "error", err)
		}
		fmt.Printf("token=%s\n", token)
	}
}
