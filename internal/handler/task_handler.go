package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"taskapi/internal/model"
	"taskapi/internal/query"
	"taskapi/internal/service"
	"taskapi/internal/validation"
)

// TaskHandler serves the caller's tasks.
type TaskHandler struct {
	svc service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(svc service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// TaskRequest is the body of create and update. On update, omitted optional
// fields keep their stored value and an empty dueDate clears it.
type TaskRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Status      *string  `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    *string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string  `json:"dueDate" validate:"omitempty,duedate"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=50"`
}

// Normalize trims the title, the description and each tag.
func (r *TaskRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Description != nil {
		*r.Description = strings.TrimSpace(*r.Description)
	}
	for i, tag := range r.Tags {
		r.Tags[i] = strings.TrimSpace(tag)
	}
}

// StatusRequest is the body of a status-only update.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in-progress completed"`
}

// TaskListResponse is one page of tasks.
type TaskListResponse struct {
	Status  string       `json:"status"`
	Results int          `json:"results"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	Pages   int          `json:"pages"`
	Limit   int          `json:"limit"`
	Data    []model.Task `json:"data"`
}

// ClearCompletedResponse reports a bulk delete.
type ClearCompletedResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

// ListTasks godoc
// @Summary List tasks
// @Description Invalid filter values are ignored; page and limit fall back to defaults.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending | in-progress | completed"
// @Param priority query string false "low | medium | high"
// @Param search query string false "Matches title or description"
// @Param sortBy query string false "createdAt | updatedAt | dueDate | completedAt | title | status | priority"
// @Param sortOrder query string false "asc | desc"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, at most 100"
// @Success 200 {object} TaskListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	page, err := h.svc.List(c.Request().Context(), id.ID, query.ParseListParams(c.QueryParams()))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, TaskListResponse{
		Status:  statusSuccess,
		Results: len(page.Items),
		Total:   page.Total,
		Page:    page.Page,
		Pages:   page.Pages,
		Limit:   page.Limit,
		Data:    page.Items,
	})
}

// Stats godoc
// @Summary Task statistics
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DataResponse{data=model.TaskStats}
// @Failure 401 {object} errors.ErrorResponse
// @Router /tasks/stats [get]
func (h *TaskHandler) Stats(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	stats, err := h.svc.Stats(c.Request().Context(), id.ID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", stats)
}

// GetTask godoc
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} DataResponse{data=model.Task}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	task, err := h.svc.Get(c.Request().Context(), id.ID, taskID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", task)
}

// CreateTask godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TaskRequest true "Task"
// @Success 201 {object} DataResponse{data=model.Task}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req TaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := service.TaskInput{
		Title: req.Title,
		Tags:  req.Tags,
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Status != nil {
		in.Status = model.TaskStatus(*req.Status)
	}
	if req.Priority != nil {
		in.Priority = model.TaskPriority(*req.Priority)
	}
	if req.DueDate != nil {
		if in.DueDate, err = validation.ParseDueDate(*req.DueDate); err != nil {
			return fail(c, fmt.Errorf("due date passed validation: %w", err))
		}
	}

	task, err := h.svc.Create(c.Request().Context(), id.ID, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, "Task created successfully", task)
}

// UpdateTask godoc
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body TaskRequest true "Task"
// @Success 200 {object} DataResponse{data=model.Task}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req TaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	upd := service.TaskUpdate{
		Title:       &req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	}
	if req.Status != nil {
		s := model.TaskStatus(*req.Status)
		upd.Status = &s
	}
	if req.Priority != nil {
		p := model.TaskPriority(*req.Priority)
		upd.Priority = &p
	}
	if req.DueDate != nil {
		if upd.DueDate, err = validation.ParseDueDate(*req.DueDate); err != nil {
			return fail(c, fmt.Errorf("due date passed validation: %w", err))
		}
		upd.ClearDueDate = upd.DueDate == nil
	}

	task, err := h.svc.Update(c.Request().Context(), id.ID, taskID, upd)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Task updated successfully", task)
}

// UpdateStatus godoc
// @Summary Update task status only
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body StatusRequest true "Status"
// @Success 200 {object} DataResponse{data=model.Task}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req StatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.svc.SetStatus(c.Request().Context(), id.ID, taskID, model.TaskStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Task status updated", task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), id.ID, taskID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Status: statusSuccess, Message: "Task deleted successfully"})
}

// ClearCompleted godoc
// @Summary Delete every completed task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ClearCompletedResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /tasks [delete]
func (h *TaskHandler) ClearCompleted(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	n, err := h.svc.ClearCompleted(c.Request().Context(), id.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ClearCompletedResponse{
		Status:       statusSuccess,
		Message:      fmt.Sprintf("%d completed tasks deleted", n),
		DeletedCount: n,
	})
}
