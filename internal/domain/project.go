package domain

import "time"

// Project is the aggregate root for collaboration: one owner, any number
// of memberships and tasks. The owner never appears in Memberships.
type Project struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Status      Stage           `json:"status"`
	OwnerID     int64           `json:"owner_id"`
	DueDate     time.Time       `json:"due_date"`
	CreatedAt   time.Time       `json:"created_at"`
	Memberships []ProjectMember `json:"memberships"`
	Tasks       []Task          `json:"tasks"`
}

// ProjectMember links a user to a project with a role. The (project,
// user) pair is unique.
type ProjectMember struct {
	ProjectID int64     `json:"project_id"`
	UserID    int64     `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
