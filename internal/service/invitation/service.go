// Package invitation drives the project invitation lifecycle:
// Pending at creation, then exactly one transition to Accepted or
// Declined. Acceptance creates the membership in the same store
// transaction that flips the status.
package invitation

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
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/service/project"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/ws"
)

// SnapshotInvalidator drops a project's cached snapshot after membership
// changes driven by invitation acceptance.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, projectID int64)
}

// ProjectSummarizer builds the caller-relative project summary used as
// the ProjectDetailsUpdated payload.
type ProjectSummarizer interface {
	Summary(ctx context.Context, actorID, projectID int64) (*project.Summary, error)
}

// Actor identifies the authenticated caller of a transition.
type Actor struct {
	UserID int64
	Email  string
	Name   string
}

// Service orchestrates invitation workflows.
type Service struct {
	projects    repository.ProjectRepository
	invitations repository.InvitationRepository
	users       repository.UserRepository
	invalidator SnapshotInvalidator
	summaries   ProjectSummarizer
	hub         *ws.Hub
	logger      *slog.Logger
}

// New returns an invitation service.
func New(projects repository.ProjectRepository, invitations repository.InvitationRepository, users repository.UserRepository, invalidator SnapshotInvalidator, summaries ProjectSummarizer, hub *ws.Hub, logger *slog.Logger) Service {
	return Service{
		projects:    projects,
		invitations: invitations,
		users:       users,
		invalidator: invalidator,
		summaries:   summaries,
		hub:         hub,
		logger:      logger,
	}
}

// Invite creates a Pending invitation and notifies the invitee's
// personal group. Owners and Admins may invite; inviting an existing
// owner or member, or duplicating a Pending invitation, is a conflict.
func (s Service) Invite(ctx context.Context, actor Actor, projectID int64, email string, role domain.Role) (*domain.Invitation, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("%w: invitee email is required", apperr.ErrValidation)
	}
	proj, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageMembers(access.RoleFor(proj, actor.UserID)) {
		return nil, apperr.ErrForbidden
	}

	invitee, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: no account exists for %s", apperr.ErrValidation, email)
		}
		return nil, err
	}
	if access.RoleFor(proj, invitee.ID) != domain.RoleNone {
		return nil, fmt.Errorf("%w: user is already a member of this project", apperr.ErrConflict)
	}
	pending, err := s.invitations.HasPendingInvitation(ctx, projectID, email)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: user already has a pending invitation", apperr.ErrConflict)
	}

	invitation := &domain.Invitation{
		ProjectID:    projectID,
		InviterID:    actor.UserID,
		InviteeEmail: email,
		Role:         role,
		Status:       domain.InvitationPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.invitations.CreateInvitation(ctx, invitation); err != nil {
		return nil, err
	}

	s.hub.Publish(ws.UserGroup(invitee.ID), ws.EventInvitationReceived, map[string]any{
		"invitationId": invitation.ID,
		"projectName":  proj.Name,
		"inviterName":  actor.Name,
		"role":         invitation.Role,
	})
	s.logger.Info("invitation created", "invitation_id", invitation.ID, "project_id", projectID, "invitee", email)
	return invitation, nil
}

// Accept transitions a Pending invitation to Accepted and creates the
// membership. Only the invitee may accept; a second accept is a
// conflict, never a duplicate membership.
func (s Service) Accept(ctx context.Context, actor Actor, invitationID int64) error {
	invitation, err := s.requireOwnInvitation(ctx, actor, invitationID)
	if err != nil {
		return err
	}
	member := &domain.ProjectMember{
		ProjectID: invitation.ProjectID,
		UserID:    actor.UserID,
		Role:      invitation.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.invitations.AcceptInvitation(ctx, invitationID, member); err != nil {
		return err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, invitation.ProjectID)
	}
	s.broadcastMembershipChange(ctx, actor.UserID, invitation.ProjectID)
	s.logger.Info("invitation accepted", "invitation_id", invitationID, "project_id", invitation.ProjectID, "user_id", actor.UserID)
	return nil
}

// Decline transitions a Pending invitation to Declined. No membership is
// created and no project state changes.
func (s Service) Decline(ctx context.Context, actor Actor, invitationID int64) error {
	if _, err := s.requireOwnInvitation(ctx, actor, invitationID); err != nil {
		return err
	}
	if err := s.invitations.DeclineInvitation(ctx, invitationID); err != nil {
		return err
	}
	s.logger.Info("invitation declined", "invitation_id", invitationID, "user_id", actor.UserID)
	return nil
}

// ListPending returns the actor's open invitations.
func (s Service) ListPending(ctx context.Context, actor Actor) ([]domain.PendingInvitation, error) {
	return s.invitations.ListPendingByEmail(ctx, strings.ToLower(actor.Email))
}

// requireOwnInvitation loads the invitation and checks the actor is its
// invitee and the invitation is still open. The terminal check here is
// advisory; the store-level status guard is what makes concurrent
// transitions safe.
func (s Service) requireOwnInvitation(ctx context.Context, actor Actor, invitationID int64) (*domain.Invitation, error) {
	invitation, err := s.invitations.GetInvitationByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(invitation.InviteeEmail, actor.Email) {
		return nil, apperr.ErrForbidden
	}
	if invitation.Status.Terminal() {
		return nil, fmt.Errorf("%w: invitation is no longer valid", apperr.ErrConflict)
	}
	return invitation, nil
}

func (s Service) broadcastMembershipChange(ctx context.Context, actorID, projectID int64) {
	if s.summaries == nil {
		return
	}
	summary, err := s.summaries.Summary(ctx, actorID, projectID)
	if err != nil {
		s.logger.Warn("post-accept summary failed, skipping broadcast", "project_id", projectID, "error", err)
		return
	}
	s.hub.Publish(ws.ProjectGroup(projectID), ws.EventProjectDetailsUpdated, summary)
}
