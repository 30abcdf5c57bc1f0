package project

import (
	"context"
	"errors"
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

// CreateInput encapsulates project creation attributes.
type CreateInput struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
}

// UpdateInput carries the mutable project fields.
type UpdateInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	DueDate     time.Time    `json:"due_date"`
	Status      domain.Stage `json:"status"`
}

// Summary is the read model returned by the summary endpoint and carried
// by ProjectDetailsUpdated events. Role and HasUnread are relative to the
// caller the summary was built for.
type Summary struct {
	ID          int64                  `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Status      domain.Stage           `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	DueDate     time.Time              `json:"due_date"`
	TaskCount   int                    `json:"task_count"`
	MemberCount int                    `json:"member_count"`
	Role        domain.Role            `json:"role"`
	Members     []domain.ProjectMember `json:"members"`
	HasUnread   bool                   `json:"has_unread"`
}

// Service orchestrates project management. Reads and writes go through
// the caching repository decorator, so snapshot invalidation happens
// inside every mutation before the broadcast goes out.
type Service struct {
	projects repository.ProjectRepository
	chat     repository.ChatRepository
	hub      *ws.Hub
	logger   *slog.Logger
}

// New returns a project service.
func New(projects repository.ProjectRepository, chat repository.ChatRepository, hub *ws.Hub, logger *slog.Logger) Service {
	return Service{projects: projects, chat: chat, hub: hub, logger: logger}
}

// Create registers a new project owned by the actor.
func (s Service) Create(ctx context.Context, ownerID int64, input CreateInput) (*domain.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: project name is required", apperr.ErrValidation)
	}
	project := &domain.Project{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Status:      domain.StageNotStarted,
		OwnerID:     ownerID,
		DueDate:     input.DueDate,
		CreatedAt:   time.Now().UTC(),
		Memberships: []domain.ProjectMember{},
		Tasks:       []domain.Task{},
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	s.logger.Info("project created", "project_id", project.ID, "owner_id", ownerID)
	return project, nil
}

// Get returns the project aggregate if the actor holds any role on it.
func (s Service) Get(ctx context.Context, actorID, projectID int64) (*domain.Project, error) {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !access.CanRead(access.RoleFor(project, actorID)) {
		return nil, apperr.ErrForbidden
	}
	return project, nil
}

// List returns the projects the actor owns or belongs to.
func (s Service) List(ctx context.Context, actorID int64) ([]domain.Project, error) {
	return s.projects.ListProjectsByUser(ctx, actorID)
}

// Update applies metadata changes and notifies the project group.
func (s Service) Update(ctx context.Context, actorID, projectID int64, input UpdateInput) (*domain.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: project name is required", apperr.ErrValidation)
	}
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageMembers(access.RoleFor(project, actorID)) {
		return nil, apperr.ErrForbidden
	}
	project.Name = strings.TrimSpace(input.Name)
	project.Description = input.Description
	project.DueDate = input.DueDate
	project.Status = input.Status
	if err := s.projects.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	s.broadcastDetails(ctx, actorID, projectID)
	return project, nil
}

// Delete removes a project; owner only. Subscribers receive
// ProjectDeleted with the identifier.
func (s Service) Delete(ctx context.Context, actorID, projectID int64) error {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !access.CanDelete(access.RoleFor(project, actorID)) {
		return apperr.ErrForbidden
	}
	if err := s.projects.DeleteProject(ctx, projectID); err != nil {
		return err
	}
	s.hub.Publish(ws.ProjectGroup(projectID), ws.EventProjectDeleted, map[string]int64{"id": projectID})
	s.logger.Info("project deleted", "project_id", projectID, "actor_id", actorID)
	return nil
}

// Summary builds the caller-relative read model.
func (s Service) Summary(ctx context.Context, actorID, projectID int64) (*Summary, error) {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	role := access.RoleFor(project, actorID)
	if !access.CanRead(role) {
		return nil, apperr.ErrForbidden
	}
	return s.buildSummary(ctx, actorID, project, role), nil
}

// AddMember directly attaches a user to the project.
func (s Service) AddMember(ctx context.Context, actorID, projectID, userID int64, role domain.Role) error {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !access.CanManageMembers(access.RoleFor(project, actorID)) {
		return apperr.ErrForbidden
	}
	if project.OwnerID == userID {
		return fmt.Errorf("%w: user already owns this project", apperr.ErrConflict)
	}
	member := &domain.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.projects.AddMember(ctx, member); err != nil {
		return err
	}
	s.broadcastDetails(ctx, actorID, projectID)
	s.logger.Info("member added", "project_id", projectID, "user_id", userID, "role", role)
	return nil
}

// UpdateMemberRole changes an existing member's role; owner only.
func (s Service) UpdateMemberRole(ctx context.Context, actorID, projectID, userID int64, role domain.Role) error {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !access.CanManageRoles(access.RoleFor(project, actorID)) {
		return apperr.ErrForbidden
	}
	if err := s.projects.UpdateMemberRole(ctx, projectID, userID, role); err != nil {
		return err
	}
	s.broadcastDetails(ctx, actorID, projectID)
	s.logger.Info("member role updated", "project_id", projectID, "user_id", userID, "role", role)
	return nil
}

// RemoveMember detaches a member from the project.
func (s Service) RemoveMember(ctx context.Context, actorID, projectID, userID int64) error {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !access.CanManageMembers(access.RoleFor(project, actorID)) {
		return apperr.ErrForbidden
	}
	if err := s.projects.RemoveMember(ctx, projectID, userID); err != nil {
		return err
	}
	s.broadcastDetails(ctx, actorID, projectID)
	s.logger.Info("member removed", "project_id", projectID, "user_id", userID)
	return nil
}

// buildSummary assumes the project was loaded after any mutation it
// should reflect.
func (s Service) buildSummary(ctx context.Context, actorID int64, project *domain.Project, role domain.Role) *Summary {
	unread, err := s.chat.HasUnread(ctx, actorID, project.ID)
	if err != nil {
		s.logger.Warn("unread lookup failed", "project_id", project.ID, "error", err)
	}
	return &Summary{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		CreatedAt:   project.CreatedAt,
		DueDate:     project.DueDate,
		TaskCount:   len(project.Tasks),
		MemberCount: len(project.Memberships),
		Role:        role,
		Members:     project.Memberships,
		HasUnread:   unread,
	}
}

func (s Service) broadcastDetails(ctx context.Context, actorID, projectID int64) {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.logger.Warn("post-write reload failed, skipping broadcast", "project_id", projectID, "error", err)
		}
		return
	}
	summary := s.buildSummary(ctx, actorID, project, access.RoleFor(project, actorID))
	s.hub.Publish(ws.ProjectGroup(projectID), ws.EventProjectDetailsUpdated, summary)
}
