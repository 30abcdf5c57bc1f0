package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/domain"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/repository"
)

// CreateProject inserts a project and assigns its identifier.
func (r *Repository) CreateProject(ctx context.Context, project *domain.Project) error {
	const query = `INSERT INTO projects (name, description, status, owner_id, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	return r.pool.QueryRow(ctx, query,
		project.Name, project.Description, project.Status.String(),
		project.OwnerID, project.DueDate, project.CreatedAt,
	).Scan(&project.ID)
}

// GetProjectByID loads the full aggregate: project row, memberships and
// tasks.
func (r *Repository) GetProjectByID(ctx context.Context, projectID int64) (*domain.Project, error) {
	const query = `SELECT id, name, description, status, owner_id, due_date, created_at
		FROM projects WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, projectID)
	var (
		p      domain.Project
		status string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &status, &p.OwnerID, &p.DueDate, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	stage, err := domain.ParseStage(status)
	if err != nil {
		return nil, err
	}
	p.Status = stage

	members, err := r.listMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	p.Memberships = members

	tasks, err := r.listTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	p.Tasks = tasks
	return &p, nil
}

func (r *Repository) listMembers(ctx context.Context, projectID int64) ([]domain.ProjectMember, error) {
	const query = `SELECT project_id, user_id, role, created_at
		FROM project_members WHERE project_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]domain.ProjectMember, 0)
	for rows.Next() {
		var (
			m    domain.ProjectMember
			role string
		)
		if err := rows.Scan(&m.ProjectID, &m.UserID, &role, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *Repository) listTasks(ctx context.Context, projectID int64) ([]domain.Task, error) {
	const query = `SELECT id, project_id, title, description, status, priority, assigned_to, due_date, created_at
		FROM tasks WHERE project_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// ListProjectsByUser returns projects the user owns or belongs to.
// Children are not loaded; callers needing the aggregate fetch by id.
func (r *Repository) ListProjectsByUser(ctx context.Context, userID int64) ([]domain.Project, error) {
	const query = `SELECT p.id, p.name, p.description, p.status, p.owner_id, p.due_date, p.created_at
		FROM projects p
		WHERE p.owner_id = $1
		   OR EXISTS (SELECT 1 FROM project_members pm WHERE pm.project_id = p.id AND pm.user_id = $1)
		ORDER BY p.created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]domain.Project, 0)
	for rows.Next() {
		var (
			p      domain.Project
			status string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &status, &p.OwnerID, &p.DueDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		stage, err := domain.ParseStage(status)
		if err != nil {
			return nil, err
		}
		p.Status = stage
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProject persists the mutable project fields. Concurrent updates
// race at the row level; the later commit wins.
func (r *Repository) UpdateProject(ctx context.Context, project *domain.Project) error {
	const query = `UPDATE projects
		SET name = $2, description = $3, status = $4, due_date = $5
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		project.ID, project.Name, project.Description, project.Status.String(), project.DueDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteProject removes a project; memberships, tasks, invitations and
// chat rows cascade.
func (r *Repository) DeleteProject(ctx context.Context, projectID int64) error {
	const query = `DELETE FROM projects WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, projectID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddMember inserts a membership row.
func (r *Repository) AddMember(ctx context.Context, member *domain.ProjectMember) error {
	const query = `INSERT INTO project_members (project_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, member.ProjectID, member.UserID, string(member.Role), member.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// UpdateMemberRole changes an existing member's role.
func (r *Repository) UpdateMemberRole(ctx context.Context, projectID, userID int64, role domain.Role) error {
	const query = `UPDATE project_members SET role = $3 WHERE project_id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, projectID, userID, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveMember deletes a membership row.
func (r *Repository) RemoveMember(ctx context.Context, projectID, userID int64) error {
	const query = `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, projectID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
