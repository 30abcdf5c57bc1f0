package chat

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

// Service orchestrates project chat and read-state tracking.
type Service struct {
	projects repository.ProjectRepository
	chat     repository.ChatRepository
	hub      *ws.Hub
	logger   *slog.Logger
}

// New returns a chat service.
func New(projects repository.ProjectRepository, chat repository.ChatRepository, hub *ws.Hub, logger *slog.Logger) Service {
	return Service{projects: projects, chat: chat, hub: hub, logger: logger}
}

func (s Service) roleFor(ctx context.Context, actorID, projectID int64) (domain.Role, error) {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return domain.RoleNone, err
	}
	return access.RoleFor(project, actorID), nil
}

// Messages returns a project's chat history and marks it read for the
// actor.
func (s Service) Messages(ctx context.Context, actorID, projectID int64) ([]domain.ChatMessage, error) {
	role, err := s.roleFor(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !access.CanRead(role) {
		return nil, apperr.ErrForbidden
	}
	messages, err := s.chat.ListMessagesByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.chat.UpsertReadState(ctx, actorID, projectID, time.Now().UTC()); err != nil {
		s.logger.Warn("mark read failed", "project_id", projectID, "user_id", actorID, "error", err)
	}
	return messages, nil
}

// Send persists a message and broadcasts it to the project group. The
// payload carries the project id so receivers can route it without a
// follow-up read.
func (s Service) Send(ctx context.Context, actorID int64, senderName string, projectID int64, content string) (*domain.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content is required", apperr.ErrValidation)
	}
	role, err := s.roleFor(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !access.CanEditContent(role) {
		return nil, apperr.ErrForbidden
	}
	message := &domain.ChatMessage{
		ProjectID:  projectID,
		SenderID:   actorID,
		SenderName: senderName,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.chat.AddMessage(ctx, message); err != nil {
		return nil, err
	}
	s.hub.Publish(ws.ProjectGroup(projectID), ws.EventReceiveChatMessage, message)
	s.logger.Info("chat message sent", "project_id", projectID, "message_id", message.ID)
	return message, nil
}

// MarkRead records that the actor has read the project's chat up to now.
func (s Service) MarkRead(ctx context.Context, actorID, projectID int64) error {
	role, err := s.roleFor(ctx, actorID, projectID)
	if err != nil {
		return err
	}
	if !access.CanRead(role) {
		return apperr.ErrForbidden
	}
	return s.chat.UpsertReadState(ctx, actorID, projectID, time.Now().UTC())
}

// UnreadStatus reports, per project the actor belongs to, whether unread
// messages exist.
func (s Service) UnreadStatus(ctx context.Context, actorID int64) (map[int64]bool, error) {
	return s.chat.UnreadByUser(ctx, actorID)
}
