package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/prodyhq/prody/internal/context"
	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/realtime"
	"github.com/prodyhq/prody/internal/repository"
	"github.com/prodyhq/prody/internal/request"
	"github.com/prodyhq/prody/internal/response"
	"github.com/prodyhq/prody/internal/validator"
)

// Creating a task, its audit entry and (when assigned) the assignee's
// notification happen in one transaction, so a half-created task can
// never leave a dangling notification. Pushes happen after commit.
func (h *RouteHandler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Title       string              `json:"title"`
		Description *string             `json:"description"`
		Status      string              `json:"status"`
		Priority    string              `json:"priority"`
		DueDate     *time.Time          `json:"due_date"`
		Blocker     *string             `json:"blocker"`
		AssignedTo  *string             `json:"assigned_to"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}

	input.Validator.Check(validator.NotBlank(input.Title), "Title is required")
	input.Validator.Check(validator.MaxRunes(input.Title, 200), "Title is too long")
	input.Validator.Check(validator.In(input.Status, models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusCompleted), "Invalid status")
	input.Validator.Check(validator.In(input.Priority, models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh), "Invalid priority")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	tx, err := h.DB.BeginTx(r.Context(), nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	task := &models.Task{
		Title:          input.Title,
		Description:    input.Description,
		Status:         input.Status,
		Priority:       input.Priority,
		DueDate:        input.DueDate,
		Blocker:        input.Blocker,
		AssignedTo:     input.AssignedTo,
		CreatedBy:      user.ID,
		OrganizationID: user.OrganizationID,
	}

	taskID, err := h.DB.Task().Insert(task, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	task.ID = taskID

	_, err = h.Activity.Record(&models.ActivityLog{
		UserID:   user.ID,
		Action:   models.ActivityLogTaskCreatedAction,
		Entity:   models.ActivityLogTaskEntity,
		EntityID: &taskID,
	}, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	var assigneeNotification *models.Notification

	// Any assignee gets the notification, self-assignments included.
	if input.AssignedTo != nil {
		assigneeNotification = &models.Notification{
			UserID:  *input.AssignedTo,
			Title:   "New task assigned",
			Message: user.FullName + " assigned you the task \"" + input.Title + "\"",
			Type:    models.NotificationTypeTaskAssignment,
		}

		_, err = h.DB.Notification().Insert(assigneeNotification, tx)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}
	}

	if err = tx.Commit(); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if assigneeNotification != nil {
		h.Hub.SendToUser(assigneeNotification.UserID, realtime.EventNewNotification, assigneeNotification)
	}
	if user.OrganizationID != nil {
		h.Hub.SendToOrg(*user.OrganizationID, realtime.EventTaskCreated, task)
	}

	err = response.JSONCreatedResponse(w, task, "Task created successfully")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)
	queryValues := retrieveUrlQueryValues(r)

	filter := &repository.TaskFilter{
		Status:   queryValues.Status,
		Priority: queryValues.Priority,
		Limit:    queryValues.Limit,
		Offset:   queryValues.Offset,
	}

	tasks, err := h.DB.Task().ListForUser(user.ID, filter)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, tasks, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)
	taskID := r.PathValue("id")

	task, found, err := h.DB.Task().GetOne(taskID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// Tasks are visible to their creator and assignee only; anyone else
	// gets the same answer as a missing task.
	if !found || !canAccessTask(task, user.ID) {
		h.ErrHandler.NotFound(w, r, "Task not found")
		return
	}

	err = response.JSONOkResponse(w, task, "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func canAccessTask(task *models.Task, userID string) bool {
	if task.CreatedBy == userID {
		return true
	}
	return task.AssignedTo != nil && *task.AssignedTo == userID
}

func (h *RouteHandler) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		TaskID      string              `json:"task_id"`
		Title       *string             `json:"title"`
		Description *string             `json:"description"`
		Status      *string             `json:"status"`
		Priority    *string             `json:"priority"`
		DueDate     *time.Time          `json:"due_date"`
		Blocker     *string             `json:"blocker"`
		AssignedTo  *string             `json:"assigned_to"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.TaskID), "Task id is required")

	if input.Status != nil {
		input.Validator.Check(validator.In(*input.Status, models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusCompleted), "Invalid status")
	}
	if input.Priority != nil {
		input.Validator.Check(validator.In(*input.Priority, models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh), "Invalid priority")
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	task, found, err := h.DB.Task().GetOne(input.TaskID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found || !canAccessTask(task, user.ID) {
		h.ErrHandler.NotFound(w, r, "Task not found")
		return
	}

	previousAssignee := task.AssignedTo

	// Apply only the fields the client sent; details records which ones.
	var changed []string

	if input.Title != nil {
		task.Title = *input.Title
		changed = append(changed, "title")
	}
	if input.Description != nil {
		task.Description = input.Description
		changed = append(changed, "description")
	}
	if input.Status != nil {
		task.Status = *input.Status
		changed = append(changed, "status")
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
		changed = append(changed, "priority")
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
		changed = append(changed, "due_date")
	}
	if input.Blocker != nil {
		task.Blocker = input.Blocker
		changed = append(changed, "blocker")
	}
	if input.AssignedTo != nil {
		task.AssignedTo = input.AssignedTo
		changed = append(changed, "assigned_to")
	}

	reassigned := input.AssignedTo != nil &&
		(previousAssignee == nil || *previousAssignee != *input.AssignedTo)

	tx, err := h.DB.BeginTx(r.Context(), nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = h.DB.Task().Update(task, tx); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	details := strings.Join(changed, ", ")
	_, err = h.Activity.Record(&models.ActivityLog{
		UserID:   user.ID,
		Action:   models.ActivityLogTaskUpdatedAction,
		Entity:   models.ActivityLogTaskEntity,
		EntityID: &task.ID,
		Details:  &details,
	}, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	var assigneeNotification *models.Notification

	if reassigned {
		assigneeNotification = &models.Notification{
			UserID:  *input.AssignedTo,
			Title:   "Task reassigned to you",
			Message: user.FullName + " reassigned the task \"" + task.Title + "\" to you",
			Type:    models.NotificationTypeTaskReassignment,
		}

		_, err = h.DB.Notification().Insert(assigneeNotification, tx)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}
	}

	if err = tx.Commit(); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// Every update pushes to whoever holds the task now; the
	// notification row itself only exists for reassignments.
	if assigneeNotification != nil {
		h.Hub.SendToUser(assigneeNotification.UserID, realtime.EventNewNotification, assigneeNotification)
	} else if task.AssignedTo != nil {
		h.Hub.SendToUser(*task.AssignedTo, realtime.EventNewNotification, map[string]string{
			"title":   "Task updated",
			"message": "Task \"" + task.Title + "\" has been updated",
		})
	}

	err = response.JSONOkResponse(w, task, "Task updated successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)
	taskID := r.PathValue("id")

	task, found, err := h.DB.Task().GetOne(taskID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found || task.CreatedBy != user.ID {
		h.ErrHandler.NotFound(w, r, "Task not found")
		return
	}

	_, found, err = h.DB.Task().Delete(taskID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r, "Task not found")
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activity.Record(&models.ActivityLog{
			UserID:   user.ID,
			Action:   models.ActivityLogTaskDeletedAction,
			Entity:   models.ActivityLogTaskEntity,
			EntityID: &taskID,
		}, nil)
		return err
	})

	err = response.JSONOkResponse(w, nil, "Task deleted successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
