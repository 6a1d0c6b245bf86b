package dto

import (
	"time"

	"task_manager/internal/domain"
)

// CreateTaskRequest is the JSON body for POST /tasks/.
type CreateTaskRequest struct {
	Name        *string `json:"name" binding:"required,min=1"`
	Description *string `json:"description"`
	Deadline    *string `json:"deadline"`
}

// ToNewTask must only be called after binding succeeded.
func (r CreateTaskRequest) ToNewTask() domain.NewTask {
	return domain.NewTask{
		Name:        *r.Name,
		Description: r.Description,
		Deadline:    r.Deadline,
	}
}

// UpdateTaskRequest is the JSON body for PUT /tasks/{id}. A missing field
// keeps its stored value; null clears description and deadline and is
// rejected for name and completed (see validateUpdateTask).
type UpdateTaskRequest struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
	Deadline    Optional[string] `json:"deadline"`
	Completed   Optional[bool]   `json:"completed"`
}

func (r UpdateTaskRequest) ToPatch() domain.TaskPatch {
	return domain.TaskPatch{
		Name:        r.Name.Ptr(),
		Description: nullableText(r.Description),
		Deadline:    nullableText(r.Deadline),
		Completed:   r.Completed.Ptr(),
	}
}

func nullableText(o Optional[string]) domain.NullableText {
	return domain.NullableText{Set: o.Set, Value: o.Ptr()}
}

type TaskResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Deadline    *string   `json:"deadline"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// DetailResponse is the body of 401, 404, 429 and 500 responses.
type DetailResponse struct {
	Detail string `json:"detail"`
}

func NewTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Deadline:    t.Deadline,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
	}
}

// NewTaskListResponse never returns nil so an empty page encodes as [].
func NewTaskListResponse(list []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = NewTaskResponse(list[i])
	}
	return out
}
