package repository

import (
	"context"
	"time"

	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/domain"
)

// UserRepository persists users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// ProjectRepository persists projects and their memberships. Reads return
// the full aggregate (memberships and tasks included); this is the
// contract the cache decorator wraps.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *domain.Project) error
	GetProjectByID(ctx context.Context, projectID int64) (*domain.Project, error)
	ListProjectsByUser(ctx context.Context, userID int64) ([]domain.Project, error)
	UpdateProject(ctx context.Context, project *domain.Project) error
	DeleteProject(ctx context.Context, projectID int64) error
	AddMember(ctx context.Context, member *domain.ProjectMember) error
	UpdateMemberRole(ctx context.Context, projectID, userID int64, role domain.Role) error
	RemoveMember(ctx context.Context, projectID, userID int64) error
}

// TaskRepository persists tasks and their notes.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTaskByID(ctx context.Context, taskID int64) (*domain.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID int64, status domain.Stage) error
	DeleteTask(ctx context.Context, taskID int64) error
	AddNote(ctx context.Context, note *domain.TaskNote) error
}

// InvitationRepository persists invitations. AcceptInvitation flips the
// status and inserts the membership in one transaction; both it and
// DeclineInvitation refuse to touch invitations that already left
// Pending.
type InvitationRepository interface {
	CreateInvitation(ctx context.Context, invitation *domain.Invitation) error
	GetInvitationByID(ctx context.Context, invitationID int64) (*domain.Invitation, error)
	HasPendingInvitation(ctx context.Context, projectID int64, email string) (bool, error)
	ListPendingByEmail(ctx context.Context, email string) ([]domain.PendingInvitation, error)
	AcceptInvitation(ctx context.Context, invitationID int64, member *domain.ProjectMember) error
	DeclineInvitation(ctx context.Context, invitationID int64) error
}

// ChatRepository persists chat messages and per-user read state.
type ChatRepository interface {
	AddMessage(ctx context.Context, message *domain.ChatMessage) error
	ListMessagesByProject(ctx context.Context, projectID int64) ([]domain.ChatMessage, error)
	UpsertReadState(ctx context.Context, userID, projectID int64, readAt time.Time) error
	HasUnread(ctx context.Context, userID, projectID int64) (bool, error)
	UnreadByUser(ctx context.Context, userID int64) (map[int64]bool, error)
}
