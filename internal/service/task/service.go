package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/access"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/apperr"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/domain"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/repository"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/ws"
)

// SnapshotInvalidator drops a project's cached snapshot. Task rows are
// embedded in that snapshot, so every task mutation invalidates it after
// the store write.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, projectID int64)
}

// CreateInput encapsulates task creation attributes.
type CreateInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	AssignedTo  *int64    `json:"assigned_to,omitempty"`
	DueDate     time.Time `json:"due_date"`
}

// Service orchestrates task workflows.
type Service struct {
	projects    repository.ProjectRepository
	tasks       repository.TaskRepository
	invalidator SnapshotInvalidator
	hub         *ws.Hub
	logger      *slog.Logger
}

// New returns a task service.
func New(projects repository.ProjectRepository, tasks repository.TaskRepository, invalidator SnapshotInvalidator, hub *ws.Hub, logger *slog.Logger) Service {
	return Service{projects: projects, tasks: tasks, invalidator: invalidator, hub: hub, logger: logger}
}

func (s Service) requireEdit(ctx context.Context, actorID, projectID int64) error {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !access.CanEditContent(access.RoleFor(project, actorID)) {
		return apperr.ErrForbidden
	}
	return nil
}

func (s Service) invalidate(ctx context.Context, projectID int64) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, projectID)
	}
}

// Create adds a task to a project and notifies its group.
func (s Service) Create(ctx context.Context, actorID, projectID int64, input CreateInput) (*domain.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: task title is required", apperr.ErrValidation)
	}
	if err := s.requireEdit(ctx, actorID, projectID); err != nil {
		return nil, err
	}
	priority := input.Priority
	if priority == 0 {
		priority = 3
	}
	task := &domain.Task{
		ProjectID:   projectID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      domain.StageNotStarted,
		Priority:    priority,
		AssignedTo:  input.AssignedTo,
		DueDate:     input.DueDate,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	s.invalidate(ctx, projectID)
	s.hub.Publish(ws.ProjectGroup(projectID), ws.EventTaskCreated, task)
	s.logger.Info("task created", "task_id", task.ID, "project_id", projectID)
	return task, nil
}

// UpdateStatus moves a task to a new stage and notifies its project
// group.
func (s Service) UpdateStatus(ctx context.Context, actorID, taskID int64, status domain.Stage) error {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.requireEdit(ctx, actorID, task.ProjectID); err != nil {
		return err
	}
	if err := s.tasks.UpdateTaskStatus(ctx, taskID, status); err != nil {
		return err
	}
	s.invalidate(ctx, task.ProjectID)
	s.hub.Publish(ws.ProjectGroup(task.ProjectID), ws.EventTaskStatusUpdated, map[string]any{
		"taskId":    taskID,
		"newStatus": status,
	})
	s.logger.Info("task status updated", "task_id", taskID, "status", status)
	return nil
}

// Delete removes a task and notifies its project group.
func (s Service) Delete(ctx context.Context, actorID, taskID int64) error {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.requireEdit(ctx, actorID, task.ProjectID); err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	s.invalidate(ctx, task.ProjectID)
	s.hub.Publish(ws.ProjectGroup(task.ProjectID), ws.EventTaskDeleted, map[string]int64{"taskId": taskID})
	s.logger.Info("task deleted", "task_id", taskID, "project_id", task.ProjectID)
	return nil
}

// AddNote attaches a note to a task and notifies its project group.
func (s Service) AddNote(ctx context.Context, actorID, taskID int64, content string) (*domain.TaskNote, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: note content is required", apperr.ErrValidation)
	}
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEdit(ctx, actorID, task.ProjectID); err != nil {
		return nil, err
	}
	note := &domain.TaskNote{
		TaskID:    taskID,
		AuthorID:  actorID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tasks.AddNote(ctx, note); err != nil {
		return nil, err
	}
	s.hub.Publish(ws.ProjectGroup(task.ProjectID), ws.EventNoteAdded, map[string]any{
		"taskId": taskID,
		"note":   note,
	})
	s.logger.Info("note added", "task_id", taskID, "note_id", note.ID)
	return note, nil
}
