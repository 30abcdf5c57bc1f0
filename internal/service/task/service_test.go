package task

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

type stubTaskRepo struct {
	tasks      map[int64]*domain.Task
	nextID     int64
	notes      []domain.TaskNote
	statusSets int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[int64]*domain.Task), nextID: 1}
}

func (s *stubTaskRepo) CreateTask(ctx context.Context, task *domain.Task) error {
	task.ID = s.nextID
	s.nextID++
	clone := *task
	s.tasks[task.ID] = &clone
	return nil
}

func (s *stubTaskRepo) GetTaskByID(ctx context.Context, taskID int64) (*domain.Task, error) {
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *task
	return &clone, nil
}

func (s *stubTaskRepo) UpdateTaskStatus(ctx context.Context, taskID int64, status domain.Stage) error {
	task, ok := s.tasks[taskID]
	if !ok {
		return repository.ErrNotFound
	}
	task.Status = status
	s.statusSets++
	return nil
}

func (s *stubTaskRepo) DeleteTask(ctx context.Context, taskID int64) error {
	if _, ok := s.tasks[taskID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

func (s *stubTaskRepo) AddNote(ctx context.Context, note *domain.TaskNote) error {
	note.ID = int64(len(s.notes) + 1)
	s.notes = append(s.notes, *note)
	return nil
}

type recordingInvalidator struct {
	calls []int64
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, projectID int64) {
	r.calls = append(r.calls, projectID)
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

func (c *captureSubscriber) waitForEvent(t *testing.T) (string, map[string]any) {
	t.Helper()
	select {
	case payload := <-c.received:
		var env struct {
			Event string         `json:"event"`
			Data  map[string]any `json:"data"`
		}
		if err := json.Unmarshal(payload, &env); err != nil {
			t.Fatalf("decode event failed: %v", err)
		}
		return env.Event, env.Data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return "", nil
	}
}

func newTestService() (Service, *stubTaskRepo, *recordingInvalidator, *ws.Hub) {
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
	tasks := newStubTaskRepo()
	invalidator := &recordingInvalidator{}
	hub := ws.NewHub(logger)
	return New(projects, tasks, invalidator, hub, logger), tasks, invalidator, hub
}

func TestCreateRequiresTitle(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Create(context.Background(), 10, 1, CreateInput{Title: " "})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateDefaultsPriorityInvalidatesAndBroadcasts(t *testing.T) {
	svc, _, invalidator, hub := newTestService()
	client := newCaptureSubscriber()
	hub.Join(ws.ProjectGroup(1), client)

	task, err := svc.Create(context.Background(), 20, 1, CreateInput{Title: "Ship it"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if task.Priority != 3 {
		t.Fatalf("expected default priority 3, got %d", task.Priority)
	}
	if task.Status != domain.StageNotStarted {
		t.Fatalf("expected NotStarted, got %s", task.Status)
	}
	if len(invalidator.calls) != 1 || invalidator.calls[0] != 1 {
		t.Fatalf("expected snapshot invalidation for project 1, got %v", invalidator.calls)
	}

	event, _ := client.waitForEvent(t)
	if event != ws.EventTaskCreated {
		t.Fatalf("expected %s, got %s", ws.EventTaskCreated, event)
	}
}

func TestViewerCannotCreate(t *testing.T) {
	svc, tasks, _, _ := newTestService()
	_, err := svc.Create(context.Background(), 30, 1, CreateInput{Title: "Nope"})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for viewer, got %v", err)
	}
	if len(tasks.tasks) != 0 {
		t.Fatalf("expected no task writes, got %d", len(tasks.tasks))
	}
}

func TestUpdateStatusBroadcastsTaskIDAndNewStatus(t *testing.T) {
	svc, _, invalidator, hub := newTestService()
	task, err := svc.Create(context.Background(), 10, 1, CreateInput{Title: "Ship it"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	client := newCaptureSubscriber()
	hub.Join(ws.ProjectGroup(1), client)
	invalidator.calls = nil

	if err := svc.UpdateStatus(context.Background(), 20, task.ID, domain.StageCompleted); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if len(invalidator.calls) != 1 {
		t.Fatalf("expected one invalidation, got %v", invalidator.calls)
	}

	event, data := client.waitForEvent(t)
	if event != ws.EventTaskStatusUpdated {
		t.Fatalf("expected %s, got %s", ws.EventTaskStatusUpdated, event)
	}
	if data["newStatus"] != "Completed" {
		t.Fatalf("expected Completed in payload, got %v", data["newStatus"])
	}
	if int64(data["taskId"].(float64)) != task.ID {
		t.Fatalf("expected task id in payload, got %v", data["taskId"])
	}
}

func TestUpdateStatusViewerForbidden(t *testing.T) {
	svc, tasks, _, _ := newTestService()
	task, err := svc.Create(context.Background(), 10, 1, CreateInput{Title: "Ship it"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	err = svc.UpdateStatus(context.Background(), 30, task.ID, domain.StageInProgress)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if tasks.statusSets != 0 {
		t.Fatalf("expected no status writes, got %d", tasks.statusSets)
	}
}

func TestDeleteBroadcastsAndInvalidates(t *testing.T) {
	svc, tasks, invalidator, hub := newTestService()
	task, err := svc.Create(context.Background(), 10, 1, CreateInput{Title: "Ship it"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	client := newCaptureSubscriber()
	hub.Join(ws.ProjectGroup(1), client)
	invalidator.calls = nil

	if err := svc.Delete(context.Background(), 10, task.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := tasks.tasks[task.ID]; ok {
		t.Fatal("expected task to be deleted")
	}
	if len(invalidator.calls) != 1 {
		t.Fatalf("expected one invalidation, got %v", invalidator.calls)
	}

	event, _ := client.waitForEvent(t)
	if event != ws.EventTaskDeleted {
		t.Fatalf("expected %s, got %s", ws.EventTaskDeleted, event)
	}
}

func TestAddNoteDoesNotInvalidate(t *testing.T) {
	svc, tasks, invalidator, hub := newTestService()
	task, err := svc.Create(context.Background(), 10, 1, CreateInput{Title: "Ship it"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	client := newCaptureSubscriber()
	hub.Join(ws.ProjectGroup(1), client)
	invalidator.calls = nil

	note, err := svc.AddNote(context.Background(), 20, task.ID, "looks good")
	if err != nil {
		t.Fatalf("AddNote returned error: %v", err)
	}
	if note.AuthorID != 20 {
		t.Fatalf("expected author 20, got %d", note.AuthorID)
	}
	if len(tasks.notes) != 1 {
		t.Fatalf("expected one note, got %d", len(tasks.notes))
	}
	if len(invalidator.calls) != 0 {
		t.Fatalf("notes are not part of the cached snapshot, got invalidations %v", invalidator.calls)
	}

	event, _ := client.waitForEvent(t)
	if event != ws.EventNoteAdded {
		t.Fatalf("expected %s, got %s", ws.EventNoteAdded, event)
	}
}

func TestAddNoteRequiresContent(t *testing.T) {
	svc, _, _, _ := newTestService()
	task, err := svc.Create(context.Background(), 10, 1, CreateInput{Title: "Ship it"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	_, err = svc.AddNote(context.Background(), 10, task.ID, "  ")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestMissingTaskIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	if err := svc.UpdateStatus(context.Background(), 10, 404, domain.StageCompleted); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), 10, 404); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
