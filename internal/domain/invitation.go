package domain

import "time"

// Invitation proposes project membership to a user identified by email.
// It starts Pending and transitions exactly once, to Accepted or
// Declined. At most one Pending invitation exists per (project, email).
type Invitation struct {
	ID           int64            `json:"id"`
	ProjectID    int64            `json:"project_id"`
	InviterID    int64            `json:"inviter_id"`
	InviteeEmail string           `json:"invitee_email"`
	Role         Role             `json:"role"`
	Status       InvitationStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}

// PendingInvitation is the listing shape for a user's open invitations,
// with project and inviter names joined in.
type PendingInvitation struct {
	ID          int64     `json:"id"`
	ProjectName string    `json:"project_name"`
	InviterName string    `json:"inviter_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}
