package service

import (
	"context"

	"task_manager/internal/db"
	"task_manager/internal/domain"
	"task_manager/internal/repository"
)

const DefaultListLimit = 100

// SessionRunner is implemented by *db.Gateway.
type SessionRunner interface {
	WithSession(ctx context.Context, fn func(q db.Querier) error) error
}

// EventPublisher receives committed task changes.
type EventPublisher interface {
	Publish(evt domain.TaskEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(domain.TaskEvent) {}

// TaskService runs each task operation in its own gateway session.
type TaskService struct {
	sessions SessionRunner
	repo     *repository.TaskRepository
	events   EventPublisher
}

// NewTaskService creates a task service. events may be nil.
func NewTaskService(sessions SessionRunner, repo *repository.TaskRepository, events EventPublisher) *TaskService {
	if events == nil {
		events = noopPublisher{}
	}
	return &TaskService{sessions: sessions, repo: repo, events: events}
}

func (s *TaskService) List(ctx context.Context, skip, limit uint64) ([]*domain.Task, error) {
	var out []*domain.Task
	err := s.sessions.WithSession(ctx, func(q db.Querier) error {
		var err error
		out, err = s.repo.List(ctx, q, skip, limit)
		return err
	})
	return out, err
}

func (s *TaskService) Create(ctx context.Context, in domain.NewTask) (*domain.Task, error) {
	var out *domain.Task
	err := s.sessions.WithSession(ctx, func(q db.Querier) error {
		var err error
		out, err = s.repo.Create(ctx, q, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(domain.TaskEvent{Type: domain.TaskEventCreated, Task: out})
	return out, nil
}

// Get returns domain.ErrTaskNotFound when id is unknown.
func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	var out *domain.Task
	err := s.sessions.WithSession(ctx, func(q db.Querier) error {
		var err error
		out, err = s.repo.GetByID(ctx, q, id)
		return err
	})
	return out, err
}

// Update returns domain.ErrTaskNotFound when id is unknown.
func (s *TaskService) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	var out *domain.Task
	err := s.sessions.WithSession(ctx, func(q db.Querier) error {
		var err error
		out, err = s.repo.Update(ctx, q, id, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !patch.Empty() {
		s.events.Publish(domain.TaskEvent{Type: domain.TaskEventUpdated, Task: out})
	}
	return out, nil
}

// Delete returns domain.ErrTaskNotFound when id is unknown.
func (s *TaskService) Delete(ctx context.Context, id int64) (*domain.Task, error) {
	var out *domain.Task
	err := s.sessions.WithSession(ctx, func(q db.Querier) error {
		var err error
		out, err = s.repo.Delete(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(domain.TaskEvent{Type: domain.TaskEventDeleted, Task: out})
	return out, nil
}

// Ready confirms the tasks schema is in place, which AUTO_MIGRATE=false does
// not guarantee.
func (s *TaskService) Ready(ctx context.Context) error {
	return s.sessions.WithSession(ctx, func(q db.Querier) error {
		return s.repo.CheckSchema(ctx, q)
	})
}
