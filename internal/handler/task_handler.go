package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"taskman/internal/errors"
	"taskman/internal/model"
	"taskman/internal/service"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// TaskResponse is the wire shape of a task. Timestamps are rendered as
// "YYYY-MM-DD HH:MM:SS"; due_date is null when absent.
type TaskResponse struct {
	ID          uint    `json:"id"`
	UserID      uint    `json:"user_id"`
	Title       string  `json:"title"`
	Summary     *string `json:"summary"`
	CreatedDate string  `json:"created_date"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"`
	Status      string  `json:"status"`
	Category    string  `json:"category"`
}

func newTaskResponse(t *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Summary:     t.Summary,
		CreatedDate: t.CreatedDate.Format(model.DateTimeLayout),
		Priority:    t.Priority,
		Status:      t.Status,
		Category:    t.Category,
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(model.DateTimeLayout)
		resp.DueDate = &due
	}
	return resp
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	UserID      uint    `json:"user_id" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Summary     *string `json:"summary"`
	CreatedDate *string `json:"created_date"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"`
	Status      string  `json:"status" validate:"required"`
	Category    string  `json:"category" validate:"required"`
}

// TaskMutationResponse confirms a create or update.
type TaskMutationResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
	UserID  uint   `json:"user_id"`
	Title   string `json:"title"`
}

// ListTasks godoc
// @Summary List all tasks
// @Tags tasks
// @Produce json
// @Success 200 {array} TaskResponse
// @Router /tasks/ [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	tasks, err := h.taskService.ListTasks(c.Request().Context())
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.Message)
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, newTaskResponse(&tasks[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetTask godoc
// @Summary Get task by id
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} TaskResponse
// @Failure 404 {object} errors.Response
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	task, err := h.taskService.GetTask(c.Request().Context(), uint(id))
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.Message)
	}
	return c.JSON(http.StatusOK, newTaskResponse(task))
}

// CreateTask godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body CreateTaskRequest true "Task payload"
// @Success 201 {object} TaskMutationResponse
// @Failure 400 {object} errors.Response
// @Router /tasks/ [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Empty or missing created_date defaults to now; a present value must
	// match the layout exactly.
	createdDate := time.Now()
	if req.CreatedDate != nil && *req.CreatedDate != "" {
		t, err := time.Parse(model.DateTimeLayout, *req.CreatedDate)
		if err != nil {
			he := errors.MapErrorToHTTP(errors.ErrInvalidDate)
			return echo.NewHTTPError(he.StatusCode, he.Message)
		}
		createdDate = t
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		t, err := time.Parse(model.DateTimeLayout, *req.DueDate)
		if err != nil {
			he := errors.MapErrorToHTTP(errors.ErrInvalidDate)
			return echo.NewHTTPError(he.StatusCode, he.Message)
		}
		dueDate = &t
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), service.CreateTaskInput{
		UserID:      req.UserID,
		Title:       req.Title,
		Summary:     req.Summary,
		CreatedDate: createdDate,
		DueDate:     dueDate,
		Priority:    req.Priority,
		Status:      req.Status,
		Category:    req.Category,
	})
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.Message)
	}

	return c.JSON(http.StatusCreated, TaskMutationResponse{
		Message: "Task created successfully",
		ID:      task.ID,
		UserID:  task.UserID,
		Title:   task.Title,
	})
}

// UpdateTask godoc
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body CreateTaskRequest false "Partial task payload"
// @Success 200 {object} TaskMutationResponse
// @Failure 404 {object} errors.Response
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	// Bound as a raw map: the merge distinguishes absent keys from explicit
	// nulls.
	patch := map[string]interface{}{}
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), uint(id), patch)
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.Message)
	}

	return c.JSON(http.StatusOK, TaskMutationResponse{
		Message: "Task updated successfully",
		ID:      task.ID,
		UserID:  task.UserID,
		Title:   task.Title,
	})
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), uint(id)); err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.Message)
	}
	return c.JSON(http.StatusOK, errors.Response{Message: "Task deleted successfully"})
}
