package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"task_manager/internal/db"
	"task_manager/internal/domain"
	httpServer "task_manager/internal/http"
	"task_manager/internal/repository"
	"task_manager/internal/service"
	"task_manager/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	pool    *pgxpool.Pool
	gateway *db.Gateway
	repo    *repository.TaskRepository
	hub     *ws.Hub
	server  *httptest.Server
}

func setup(t *testing.T) *env {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	require.NoError(t, db.ApplyMigrations(ctx, dsn))

	pool, err := db.Connect(ctx, db.Options{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "TRUNCATE tasks RESTART IDENTITY")
	require.NoError(t, err)

	e := &env{
		pool:    pool,
		gateway: db.NewGateway(pool),
		repo:    repository.NewTaskRepository(),
		hub:     ws.NewHub(),
	}
	t.Cleanup(e.hub.Close)

	gin.SetMode(gin.TestMode)
	tasks := service.NewTaskService(e.gateway, e.repo, e.hub)
	r := httpServer.NewEngine(httpServer.Deps{
		Tasks:          tasks,
		DB:             e.gateway,
		Schema:         tasks,
		Hub:            e.hub,
		Version:        "integration",
		AllowedOrigins: []string{"*"},
	})
	e.server = httptest.NewServer(r)
	t.Cleanup(e.server.Close)
	return e
}

func (e *env) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	return resp.StatusCode, raw
}

func (e *env) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	err := e.gateway.WithSession(context.Background(), func(q db.Querier) error {
		var err error
		n, err = e.repo.Count(context.Background(), q)
		return err
	})
	require.NoError(t, err)
	return n
}

func TestTaskAPI_Lifecycle(t *testing.T) {
	e := setup(t)

	code, body := e.do(t, http.MethodPost, "/tasks/", `{"name":"Write report","description":"Q3","deadline":"2024-10-01"}`)
	require.Equal(t, http.StatusOK, code)
	var created domain.Task
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Positive(t, created.ID)
	assert.False(t, created.Completed)
	assert.False(t, created.CreatedAt.IsZero())

	path := fmt.Sprintf("/tasks/%d", created.ID)

	code, body = e.do(t, http.MethodPut, path, `{"completed":true}`)
	require.Equal(t, http.StatusOK, code)
	var updated domain.Task
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "Write report", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Q3", *updated.Description)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	code, body = e.do(t, http.MethodPut, path, `{"description":null}`)
	require.Equal(t, http.StatusOK, code)
	var cleared domain.Task
	require.NoError(t, json.Unmarshal(body, &cleared))
	assert.Nil(t, cleared.Description)
	require.NotNil(t, cleared.Deadline)
	assert.Equal(t, "2024-10-01", *cleared.Deadline)

	code, _ = e.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, code)

	code, body = e.do(t, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"Task deleted"}`, string(body))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		code, body = e.do(t, method, path, `{"completed":false}`)
		assert.Equal(t, http.StatusNotFound, code, method)
		assert.JSONEq(t, `{"detail":"Task not found"}`, string(body), method)
	}
}

func TestTaskAPI_Pagination(t *testing.T) {
	e := setup(t)

	ctx := context.Background()
	err := e.gateway.WithSession(ctx, func(q db.Querier) error {
		for i := 0; i < 150; i++ {
			if _, err := e.repo.Create(ctx, q, domain.NewTask{Name: fmt.Sprintf("t%d", i)}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	code, body := e.do(t, http.MethodGet, "/?skip=100&limit=100", "")
	require.Equal(t, http.StatusOK, code)
	var page []domain.Task
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page, 50)
	assert.Equal(t, "t100", page[0].Name)
	assert.Equal(t, "t149", page[49].Name)
}

func TestTaskAPI_InvalidCreateDoesNotInsert(t *testing.T) {
	e := setup(t)

	before := e.count(t)
	code, _ := e.do(t, http.MethodPost, "/tasks/", `{"description":"no name"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, before, e.count(t))
}

func TestTaskAPI_FeedReceivesCreate(t *testing.T) {
	e := setup(t)

	wsURL := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var ready ws.Envelope
	require.NoError(t, conn.ReadJSON(&ready))
	require.Equal(t, ws.MsgReady, ready.Type)

	code, _ := e.do(t, http.MethodPost, "/tasks/", `{"name":"feed"}`)
	require.Equal(t, http.StatusOK, code)

	var evt domain.TaskEvent
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, domain.TaskEventCreated, evt.Type)
	require.NotNil(t, evt.Task)
	assert.Equal(t, "feed", evt.Task.Name)
}
