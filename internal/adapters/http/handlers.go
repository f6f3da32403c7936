package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	csvimport "github.com/taskmaster/tasks/internal/adapters/csv"
	"github.com/taskmaster/tasks/internal/domain/entities"
	"github.com/taskmaster/tasks/internal/infrastructure/logger"
	"github.com/taskmaster/tasks/internal/ports"
)

// Response messages
const (
	MessageWorking        = "WORKING API REST!"
	MessageTaskCreated    = "new task successfully created!"
	MessageTaskRequired   = "Task title and description are required."
	MessageTaskNotFound   = "Task not found."
	MessageUpdateFailed   = "An error occurred while updating the task."
	MessageInvalidRequest = "Invalid request format"
	MessageRouteNotFound  = "route not found!"
)

// HealthHandler answers the root liveness probe
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Root reports that the API is up
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: MessageWorking})
}

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks handles listing every task
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Success 200 {array} entities.Task
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	tasks, err := h.taskService.ListTasks(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List tasks failed", "error", err)
		return err
	}

	return c.JSON(http.StatusOK, tasks)
}

// CreateTask handles task creation
// @Summary Create a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param task body ports.CreateTaskRequest true "Task"
// @Success 201 {object} TaskCreatedResponse
// @Failure 400 {object} MessageResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MessageTaskRequired)
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		return h.taskError(c, err, "Create task failed")
	}

	return c.JSON(http.StatusCreated, TaskCreatedResponse{
		Message: MessageTaskCreated,
		Data:    task,
	})
}

// ImportTasks handles bulk creation from a CSV body
// @Summary Import tasks from CSV
// @Tags Tasks
// @Accept text/csv
// @Produce plain
// @Success 200 {string} string
// @Failure 400 {object} MessageResponse
// @Router /tasks/import [post]
func (h *TaskHandler) ImportTasks(c echo.Context) error {
	rows, err := csvimport.ParseTasks(c.Request().Body)
	if err != nil {
		return h.taskError(c, err, "Parse CSV import failed")
	}

	tasks, err := h.taskService.ImportTasks(c.Request().Context(), rows)
	if err != nil {
		return h.taskError(c, err, "Import tasks failed")
	}

	return c.String(http.StatusOK, fmt.Sprintf("%d tasks imported successfully!", len(tasks)))
}

// ReplaceTask handles overwriting a task's title and description
// @Summary Replace a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param task body ports.ReplaceTaskRequest true "Task"
// @Success 200 {object} TaskUpdatedResponse
// @Failure 400 {object} MessageResponse
// @Failure 404 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) ReplaceTask(c echo.Context) error {
	taskID := c.Param("id")

	var req ports.ReplaceTaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MessageTaskRequired)
	}

	task, err := h.taskService.ReplaceTask(c.Request().Context(), taskID, req)
	if err != nil {
		return h.taskError(c, err, "Replace task failed")
	}

	return c.JSON(http.StatusOK, TaskUpdatedResponse{
		Message: fmt.Sprintf("Task %s updated successfully!", taskID),
		Task:    task,
	})
}

// CompleteTask handles marking a task as completed
// @Summary Complete a task
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} TaskUpdatedResponse
// @Failure 404 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /tasks/{id}/complete [patch]
func (h *TaskHandler) CompleteTask(c echo.Context) error {
	taskID := c.Param("id")

	task, err := h.taskService.CompleteTask(c.Request().Context(), taskID)
	if err != nil {
		return h.taskError(c, err, "Complete task failed")
	}

	return c.JSON(http.StatusOK, TaskUpdatedResponse{
		Message: fmt.Sprintf("Task %s updated successfully!", taskID),
		Task:    task,
	})
}

// DeleteTask handles task deletion. Unknown ids are not an error.
// @Summary Delete a task
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} TaskDeletedResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	taskID := c.Param("id")

	task, err := h.taskService.DeleteTask(c.Request().Context(), taskID)
	if err != nil {
		return h.taskError(c, err, "Delete task failed")
	}

	return c.JSON(http.StatusOK, TaskDeletedResponse{
		Message:    fmt.Sprintf("Task %s successfully deleted!", taskID),
		DeleteTask: task,
	})
}

// taskError maps service errors onto HTTP errors.
func (h *TaskHandler) taskError(c echo.Context, err error, msg string) error {
	log := h.logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID)).WithError(err)

	switch {
	case errors.Is(err, entities.ErrInvalidTask):
		return echo.NewHTTPError(http.StatusBadRequest, MessageTaskRequired)
	case errors.Is(err, entities.ErrInvalidCSV):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, MessageTaskNotFound)
	case errors.Is(err, entities.ErrTaskUpdateFailed):
		log.Error(msg)
		return echo.NewHTTPError(http.StatusInternalServerError, MessageUpdateFailed)
	default:
		log.Error(msg)
		return err
	}
}

// bindJSON decodes the body as a single JSON value whatever the request
// content type. An empty body leaves i untouched; anything after the value
// is rejected.
func bindJSON(c echo.Context, i interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	if err := dec.Decode(i); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return echo.NewHTTPError(http.StatusBadRequest, MessageInvalidRequest).SetInternal(err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return echo.NewHTTPError(http.StatusBadRequest, MessageInvalidRequest).SetInternal(errTrailingData)
	}
	return nil
}

var errTrailingData = errors.New("unexpected data after JSON body")

// Request/Response types

type MessageResponse struct {
	Message string `json:"message"`
}

type TaskCreatedResponse struct {
	Message string         `json:"message"`
	Data    *entities.Task `json:"data"`
}

type TaskUpdatedResponse struct {
	Message string         `json:"message"`
	Task    *entities.Task `json:"task"`
}

type TaskDeletedResponse struct {
	Message    string         `json:"message"`
	DeleteTask *entities.Task `json:"deleteTask"`
}
