package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"task_manager/internal/db"
	"task_manager/internal/domain"
	"task_manager/internal/repository"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskColumns = []string{"id", "name", "description", "deadline", "completed", "created_at"}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.TaskEvent
}

func (p *recordingPublisher) Publish(evt domain.TaskEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func newTestService(t *testing.T) (*TaskService, pgxmock.PgxPoolIface, *recordingPublisher) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	pub := &recordingPublisher{}
	svc := NewTaskService(db.NewGateway(mock), repository.NewTaskRepository(), pub)
	return svc, mock, pub
}

func TestTaskService_Create(t *testing.T) {
	svc, mock, pub := newTestService(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO tasks").
		WillReturnRows(mock.NewRows(taskColumns).AddRow(int64(1), "A", (*string)(nil), (*string)(nil), false, time.Now()))
	mock.ExpectCommit()

	task, err := svc.Create(ctx, domain.NewTask{Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, []string{domain.TaskEventCreated}, pub.types())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Get_NotFoundRollsBack(t *testing.T) {
	svc, mock, pub := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE id").
		WithArgs(int64(42)).
		WillReturnRows(mock.NewRows(taskColumns))
	mock.ExpectRollback()

	task, err := svc.Get(context.Background(), 42)
	assert.Nil(t, task)
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))
	assert.Empty(t, pub.types())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Update(t *testing.T) {
	t.Run("Should publish an update event for a non-empty patch", func(t *testing.T) {
		svc, mock, pub := newTestService(t)

		done := true
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE tasks SET completed").
			WithArgs(true, int64(1)).
			WillReturnRows(mock.NewRows(taskColumns).AddRow(int64(1), "A", (*string)(nil), (*string)(nil), true, time.Now()))
		mock.ExpectCommit()

		task, err := svc.Update(context.Background(), 1, domain.TaskPatch{Completed: &done})
		require.NoError(t, err)
		assert.True(t, task.Completed)
		assert.Equal(t, []string{domain.TaskEventUpdated}, pub.types())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should not publish for an empty patch", func(t *testing.T) {
		svc, mock, pub := newTestService(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM tasks WHERE id").
			WithArgs(int64(1)).
			WillReturnRows(mock.NewRows(taskColumns).AddRow(int64(1), "A", (*string)(nil), (*string)(nil), false, time.Now()))
		mock.ExpectCommit()

		_, err := svc.Update(context.Background(), 1, domain.TaskPatch{})
		require.NoError(t, err)
		assert.Empty(t, pub.types())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTaskService_Delete(t *testing.T) {
	svc, mock, pub := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM tasks").
		WithArgs(int64(9)).
		WillReturnRows(mock.NewRows(taskColumns).AddRow(int64(9), "bye", (*string)(nil), (*string)(nil), false, time.Now()))
	mock.ExpectCommit()

	task, err := svc.Delete(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "bye", task.Name)
	assert.Equal(t, []string{domain.TaskEventDeleted}, pub.types())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_List_StoreErrorRollsBack(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM tasks").WillReturnError(errors.New("connection refused"))
	mock.ExpectRollback()

	_, err := svc.List(context.Background(), 0, DefaultListLimit)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrTaskNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Ready(t *testing.T) {
	t.Run("Should pass when the table exists", func(t *testing.T) {
		svc, mock, _ := newTestService(t)

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT 1 FROM tasks LIMIT 1`).WillReturnResult(pgxmock.NewResult("SELECT", 0))
		mock.ExpectCommit()

		assert.NoError(t, svc.Ready(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should fail and roll back when the table is missing", func(t *testing.T) {
		svc, mock, _ := newTestService(t)

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT 1 FROM tasks LIMIT 1`).WillReturnError(errors.New(`relation "tasks" does not exist`))
		mock.ExpectRollback()

		err := svc.Ready(context.Background())
		assert.ErrorContains(t, err, "checking tasks table")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
