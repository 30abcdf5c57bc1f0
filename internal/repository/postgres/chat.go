package postgres

import (
	"context"
	"time"

	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/domain"
)

// AddMessage inserts a chat message and assigns its identifier.
func (r *Repository) AddMessage(ctx context.Context, message *domain.ChatMessage) error {
	const query = `INSERT INTO chat_messages (project_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	return r.pool.QueryRow(ctx, query,
		message.ProjectID, message.SenderID, message.Content, message.CreatedAt,
	).Scan(&message.ID)
}

// ListMessagesByProject returns a project's messages oldest first with
// sender names joined in.
func (r *Repository) ListMessagesByProject(ctx context.Context, projectID int64) ([]domain.ChatMessage, error) {
	const query = `SELECT m.id, m.project_id, m.sender_id, u.name, m.content, m.created_at
		FROM chat_messages m
		INNER JOIN users u ON u.id = m.sender_id
		WHERE m.project_id = $1
		ORDER BY m.created_at`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]domain.ChatMessage, 0)
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.SenderID, &m.SenderName, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// UpsertReadState records when a user last read a project's chat.
func (r *Repository) UpsertReadState(ctx context.Context, userID, projectID int64, readAt time.Time) error {
	const query = `INSERT INTO chat_read_states (user_id, project_id, last_read_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, project_id) DO UPDATE SET last_read_at = EXCLUDED.last_read_at`
	_, err := r.pool.Exec(ctx, query, userID, projectID, readAt)
	return err
}

// HasUnread reports whether a project has messages newer than the user's
// last read.
func (r *Repository) HasUnread(ctx context.Context, userID, projectID int64) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM chat_messages m
		WHERE m.project_id = $2
		  AND m.created_at > COALESCE(
			(SELECT s.last_read_at FROM chat_read_states s WHERE s.user_id = $1 AND s.project_id = $2),
			'epoch'::timestamptz))`
	var unread bool
	if err := r.pool.QueryRow(ctx, query, userID, projectID).Scan(&unread); err != nil {
		return false, err
	}
	return unread, nil
}

// UnreadByUser computes the unread flag for every project the user owns
// or belongs to.
func (r *Repository) UnreadByUser(ctx context.Context, userID int64) (map[int64]bool, error) {
	const query = `SELECT p.id, EXISTS (
			SELECT 1 FROM chat_messages m
			WHERE m.project_id = p.id
			  AND m.created_at > COALESCE(s.last_read_at, 'epoch'::timestamptz))
		FROM projects p
		LEFT JOIN chat_read_states s ON s.project_id = p.id AND s.user_id = $1
		WHERE p.owner_id = $1
		   OR EXISTS (SELECT 1 FROM project_members pm WHERE pm.project_id = p.id AND pm.user_id = $1)`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]bool)
	for rows.Next() {
		var (
			projectID int64
			unread    bool
		)
		if err := rows.Scan(&projectID, &unread); err != nil {
			return nil, err
		}
		result[projectID] = unread
	}
	return result, rows.Err()
}
