package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/domain"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/repository"
)

// CreateInvitation inserts a Pending invitation. A partial unique index
// on (project_id, invitee_email) WHERE status = 'Pending' backstops the
// one-pending-per-pair rule under concurrent inviters.
func (r *Repository) CreateInvitation(ctx context.Context, invitation *domain.Invitation) error {
	const query = `INSERT INTO project_invitations (project_id, inviter_id, invitee_email, role, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		invitation.ProjectID, invitation.InviterID, invitation.InviteeEmail,
		string(invitation.Role), invitation.Status.String(), invitation.CreatedAt,
	).Scan(&invitation.ID)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// GetInvitationByID retrieves an invitation by identifier.
func (r *Repository) GetInvitationByID(ctx context.Context, invitationID int64) (*domain.Invitation, error) {
	const query = `SELECT id, project_id, inviter_id, invitee_email, role, status, created_at
		FROM project_invitations WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, invitationID)
	var (
		inv    domain.Invitation
		role   string
		status string
	)
	if err := row.Scan(&inv.ID, &inv.ProjectID, &inv.InviterID, &inv.InviteeEmail, &role, &status, &inv.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	inv.Role = domain.Role(role)
	parsed, err := domain.ParseInvitationStatus(status)
	if err != nil {
		return nil, err
	}
	inv.Status = parsed
	return &inv, nil
}

// HasPendingInvitation reports whether a Pending invitation exists for
// the (project, email) pair.
func (r *Repository) HasPendingInvitation(ctx context.Context, projectID int64, email string) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM project_invitations
		WHERE project_id = $1 AND invitee_email = $2 AND status = 'Pending')`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, projectID, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListPendingByEmail returns open invitations for an email, newest first,
// with project and inviter names joined in.
func (r *Repository) ListPendingByEmail(ctx context.Context, email string) ([]domain.PendingInvitation, error) {
	const query = `SELECT i.id, p.name, u.name, i.role, i.created_at
		FROM project_invitations i
		INNER JOIN projects p ON p.id = i.project_id
		INNER JOIN users u ON u.id = i.inviter_id
		WHERE i.invitee_email = $1 AND i.status = 'Pending'
		ORDER BY i.created_at DESC`
	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := make([]domain.PendingInvitation, 0)
	for rows.Next() {
		var (
			inv  domain.PendingInvitation
			role string
		)
		if err := rows.Scan(&inv.ID, &inv.ProjectName, &inv.InviterName, &role, &inv.CreatedAt); err != nil {
			return nil, err
		}
		inv.Role = domain.Role(role)
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// AcceptInvitation flips a Pending invitation to Accepted and inserts the
// membership in the same transaction. The status guard makes a second
// accept fail with ErrConflict instead of duplicating the membership.
func (r *Repository) AcceptInvitation(ctx context.Context, invitationID int64, member *domain.ProjectMember) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const update = `UPDATE project_invitations SET status = 'Accepted'
		WHERE id = $1 AND status = 'Pending'`
	tag, err := tx.Exec(ctx, update, invitationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}

	const insert = `INSERT INTO project_members (project_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, insert, member.ProjectID, member.UserID, string(member.Role), member.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return tx.Commit(ctx)
}

// DeclineInvitation flips a Pending invitation to Declined.
func (r *Repository) DeclineInvitation(ctx context.Context, invitationID int64) error {
	const query = `UPDATE project_invitations SET status = 'Declined'
		WHERE id = $1 AND status = 'Pending'`
	tag, err := r.pool.Exec(ctx, query, invitationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}
