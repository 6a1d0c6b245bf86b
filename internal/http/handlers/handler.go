package handlers

import (
	"context"

	"task_manager/internal/domain"
	"task_manager/internal/dto"
)

// TaskService is implemented by *service.TaskService.
type TaskService interface {
	List(ctx context.Context, skip, limit uint64) ([]*domain.Task, error)
	Create(ctx context.Context, in domain.NewTask) (*domain.Task, error)
	Get(ctx context.Context, id int64) (*domain.Task, error)
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id int64) (*domain.Task, error)
}

type Handler struct {
	Tasks TaskService
}

func NewHandler(tasks TaskService) *Handler {
	dto.SetupValidator()
	return &Handler{Tasks: tasks}
}
