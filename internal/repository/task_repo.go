package repository

import (
	"context"
	"fmt"

	"task_manager/internal/db"
	"task_manager/internal/domain"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var taskColumns = []string{"id", "name", "description", "deadline", "completed", "created_at"}

const returningTask = "RETURNING id, name, description, deadline, completed, created_at"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// TaskRepository is stateless; every method runs on the session it is given.
type TaskRepository struct{}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{}
}

// List returns at most limit tasks after skipping skip rows, in insertion order.
func (r *TaskRepository) List(ctx context.Context, q db.Querier, skip, limit uint64) ([]*domain.Task, error) {
	query, args, err := psql.Select(taskColumns...).
		From("tasks").
		OrderBy("id").
		Limit(limit).
		Offset(skip).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list query: %w", err)
	}

	res := make([]*domain.Task, 0)
	if err := pgxscan.Select(ctx, q, &res, query, args...); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return res, nil
}

// Create inserts a task. completed always starts false and created_at is
// assigned by the database.
func (r *TaskRepository) Create(ctx context.Context, q db.Querier, in domain.NewTask) (*domain.Task, error) {
	query, args, err := psql.Insert("tasks").
		Columns("name", "description", "deadline", "completed").
		Values(in.Name, in.Description, in.Deadline, false).
		Suffix(returningTask).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert query: %w", err)
	}

	var t domain.Task
	if err := pgxscan.Get(ctx, q, &t, query, args...); err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}
	return &t, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, q db.Querier, id int64) (*domain.Task, error) {
	query, args, err := psql.Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	return getOne(ctx, q, "selecting task", query, args)
}

// Update writes only the fields set in patch. An empty patch is a read.
func (r *TaskRepository) Update(ctx context.Context, q db.Querier, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Empty() {
		return r.GetByID(ctx, q, id)
	}

	set := make(map[string]any, 4)
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description.Set {
		set["description"] = patch.Description.Value
	}
	if patch.Deadline.Set {
		set["deadline"] = patch.Deadline.Value
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	query, args, err := psql.Update("tasks").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix(returningTask).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}
	return getOne(ctx, q, "updating task", query, args)
}

// Delete removes the row permanently and returns it as it was.
func (r *TaskRepository) Delete(ctx context.Context, q db.Querier, id int64) (*domain.Task, error) {
	query, args, err := psql.Delete("tasks").
		Where(squirrel.Eq{"id": id}).
		Suffix(returningTask).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building delete query: %w", err)
	}
	return getOne(ctx, q, "deleting task", query, args)
}

func (r *TaskRepository) Count(ctx context.Context, q db.Querier) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, "SELECT count(*) FROM tasks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return n, nil
}

// CheckSchema fails when the tasks table is missing or unreadable.
func (r *TaskRepository) CheckSchema(ctx context.Context, q db.Querier) error {
	if _, err := q.Exec(ctx, "SELECT 1 FROM tasks LIMIT 1"); err != nil {
		return fmt.Errorf("checking tasks table: %w", err)
	}
	return nil
}

func getOne(ctx context.Context, q db.Querier, op, query string, args []any) (*domain.Task, error) {
	var t domain.Task
	if err := pgxscan.Get(ctx, q, &t, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}
