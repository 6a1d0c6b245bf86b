package domain

import (
	"errors"
	"time"
)

var ErrTaskNotFound = errors.New("task not found")

type Task struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	Deadline    *string   `db:"deadline" json:"deadline"`
	Completed   bool      `db:"completed" json:"completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// NewTask carries the client-supplied fields of a task to be inserted.
type NewTask struct {
	Name        string
	Description *string
	Deadline    *string
}

// NullableText updates a nullable text column. Unset leaves the column
// alone; Set with a nil Value writes NULL.
type NullableText struct {
	Set   bool
	Value *string
}

// SetText returns a NullableText that writes v.
func SetText(v string) NullableText {
	return NullableText{Set: true, Value: &v}
}

// ClearText returns a NullableText that writes NULL.
func ClearText() NullableText {
	return NullableText{Set: true}
}

// TaskPatch holds a partial update. Nil or unset fields are left unchanged.
type TaskPatch struct {
	Name        *string
	Description NullableText
	Deadline    NullableText
	Completed   *bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Name == nil && !p.Description.Set && !p.Deadline.Set && p.Completed == nil
}
