package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"task_manager/internal/domain"
	"task_manager/internal/dto"
	"task_manager/internal/logger"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

const taskIDParam = "task_id"

var (
	notFoundBody = dto.DetailResponse{Detail: "Task not found"}
	internalBody = dto.DetailResponse{Detail: "Internal Server Error"}
)

// ListTasks returns a page of tasks in creation order.
func (h *Handler) ListTasks(c *gin.Context) {
	skip, ok := nonNegativeQuery(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := nonNegativeQuery(c, "limit", service.DefaultListLimit)
	if !ok {
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), skip, limit)
	if err != nil {
		h.fail(c, "list tasks", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskListResponse(tasks))
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.BodyErrors(err))
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), req.ToNewTask())
	if err != nil {
		h.fail(c, "create task", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(task))
}

func (h *Handler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get task", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(task))
}

// UpdateTask applies only the fields present in the body.
func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.BodyErrors(err))
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		h.fail(c, "update task", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(task))
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if _, err := h.Tasks.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete task", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted"})
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, domain.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, notFoundBody)
		return
	}
	logger.FromContext(c.Request.Context()).Error(op+" failed", "error", err)
	c.JSON(http.StatusInternalServerError, internalBody)
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(taskIDParam), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.IntParseError("path", taskIDParam))
		return 0, false
	}
	return id, true
}

func nonNegativeQuery(c *gin.Context, name string, def uint64) (uint64, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return def, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.IntParseError("query", name))
		return 0, false
	}
	if n < 0 {
		c.JSON(http.StatusUnprocessableEntity, dto.NegativeError("query", name))
		return 0, false
	}
	return uint64(n), true
}
