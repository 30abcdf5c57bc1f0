package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/apperr"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/domain"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/repository"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/ws"
)

type stubProjectRepo struct {
	project *domain.Project
}

func (s *stubProjectRepo) CreateProject(ctx context.Context, p *domain.Project) error { return nil }
func (s *stubProjectRepo) GetProjectByID(ctx context.Context, projectID int64) (*domain.Project, error) {
	if s.project == nil || s.project.ID != projectID {
		return nil, repository.ErrNotFound
	}
	clone := *s.project
	return &clone, nil
}
func (s *stubProjectRepo) ListProjectsByUser(ctx context.Context, userID int64) ([]domain.Project, error) {
	return nil, nil
}
func (s *stubProjectRepo) UpdateProject(ctx context.Context, p *domain.Project) error { return nil }
func (s *stubProjectRepo) DeleteProject(ctx context.Context, projectID int64) error   { return nil }
func (s *stubProjectRepo) AddMember(ctx context.Context, member *domain.ProjectMember) error {
	return nil
}
func (s *stubProjectRepo) UpdateMemberRole(ctx context.Context, projectID, userID int64, role domain.Role) error {
	return nil
}
func (s *stubProjectRepo) RemoveMember(ctx context.Context, projectID, userID int64) error {
	return nil
}

type memoryChatRepo struct {
	messages  []domain.ChatMessage
	readState map[int64]time.Time // keyed by user for the single test project
}

func newMemoryChatRepo() *memoryChatRepo {
	return &memoryChatRepo{readState: make(map[int64]time.Time)}
}

func (m *memoryChatRepo) AddMessage(ctx context.Context, message *domain.ChatMessage) error {
	message.ID = int64(len(m.messages) + 1)
	m.messages = append(m.messages, *message)
	return nil
}

func (m *memoryChatRepo) ListMessagesByProject(ctx context.Context, projectID int64) ([]domain.ChatMessage, error) {
	result := make([]domain.ChatMessage, 0)
	for _, msg := range m.messages {
		if msg.ProjectID == projectID {
			result = append(result, msg)
		}
	}
	return result, nil
}

func (m *memoryChatRepo) UpsertReadState(ctx context.Context, userID, projectID int64, readAt time.Time) error {
	m.readState[userID] = readAt
	return nil
}

func (m *memoryChatRepo) HasUnread(ctx context.Context, userID, projectID int64) (bool, error) {
	lastRead := m.readState[userID]
	for _, msg := range m.messages {
		if msg.ProjectID == projectID && msg.CreatedAt.After(lastRead) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryChatRepo) UnreadByUser(ctx context.Context, userID int64) (map[int64]bool, error) {
	result := make(map[int64]bool)
	for _, msg := range m.messages {
		unread, _ := m.HasUnread(ctx, userID, msg.ProjectID)
		result[msg.ProjectID] = unread
	}
	return result, nil
}

type captureSubscriber struct {
	received chan []byte
}

func newCaptureSubscriber() *captureSubscriber {
	return &captureSubscriber{received: make(chan []byte, 8)}
}

func (c *captureSubscriber) Send(payload []byte) error {
	c.received <- payload
	return nil
}

func (c *captureSubscriber) Close() {}

func newTestService() (Service, *memoryChatRepo, *ws.Hub) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	projects := &stubProjectRepo{
		project: &domain.Project{
			ID:      1,
			OwnerID: 10,
			Memberships: []domain.ProjectMember{
				{ProjectID: 1, UserID: 20, Role: domain.RoleMember},
				{ProjectID: 1, UserID: 30, Role: domain.RoleViewer},
			},
		},
	}
	repo := newMemoryChatRepo()
	hub := ws.NewHub(logger)
	return New(projects, repo, hub, logger), repo, hub
}

func TestSendRequiresContent(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Send(context.Background(), 20, "Bo", 1, "   ")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty message, got %v", err)
	}
}

func TestViewerCannotSend(t *testing.T) {
	svc, repo, _ := newTestService()
	_, err := svc.Send(context.Background(), 30, "Vi", 1, "hello")
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for viewer, got %v", err)
	}
	if len(repo.messages) != 0 {
		t.Fatalf("expected no stored messages, got %d", len(repo.messages))
	}
}

func TestStrangerCannotReadMessages(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Messages(context.Background(), 99, 1)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}

func TestSendBroadcastsFullMessage(t *testing.T) {
	svc, _, hub := newTestService()
	client := newCaptureSubscriber()
	hub.Join(ws.ProjectGroup(1), client)

	message, err := svc.Send(context.Background(), 20, "Bo", 1, "hello")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if message.ID == 0 {
		t.Fatal("expected persisted message id")
	}

	select {
	case payload := <-client.received:
		var env struct {
			Event string             `json:"event"`
			Data  domain.ChatMessage `json:"data"`
		}
		if err := json.Unmarshal(payload, &env); err != nil {
			t.Fatalf("decode event failed: %v", err)
		}
		if env.Event != ws.EventReceiveChatMessage {
			t.Fatalf("expected %s, got %s", ws.EventReceiveChatMessage, env.Event)
		}
		if env.Data.Content != "hello" || env.Data.SenderName != "Bo" || env.Data.ProjectID != 1 {
			t.Fatalf("unexpected broadcast payload: %+v", env.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestMessagesMarksRead(t *testing.T) {
	svc, repo, _ := newTestService()
	if _, err := svc.Send(context.Background(), 20, "Bo", 1, "hello"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	unread, err := repo.HasUnread(context.Background(), 10, 1)
	if err != nil || !unread {
		t.Fatalf("expected unread before reading, got unread=%v err=%v", unread, err)
	}

	messages, err := svc.Messages(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("Messages returned error: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected one message, got %d", len(messages))
	}

	unread, err = repo.HasUnread(context.Background(), 10, 1)
	if err != nil || unread {
		t.Fatalf("expected read after listing, got unread=%v err=%v", unread, err)
	}
}

func TestMarkReadViewerAllowed(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.MarkRead(context.Background(), 30, 1); err != nil {
		t.Fatalf("expected viewer mark-read to succeed, got %v", err)
	}
}

func TestUnreadStatusPerProject(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Send(context.Background(), 20, "Bo", 1, "hello"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	status, err := svc.UnreadStatus(context.Background(), 10)
	if err != nil {
		t.Fatalf("UnreadStatus returned error: %v", err)
	}
	if !status[1] {
		t.Fatalf("expected project 1 unread, got %v", status)
	}
}
