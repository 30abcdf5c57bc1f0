package domain

import "time"

// ChatMessage is a message posted to a project's chat. SenderName is
// joined from the users table when listing, not stored.
type ChatMessage struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"projectId"`
	SenderID   int64     `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ChatReadState records the last time a user read a project's chat,
// unique per (user, project) pair.
type ChatReadState struct {
	UserID     int64     `json:"user_id"`
	ProjectID  int64     `json:"project_id"`
	LastReadAt time.Time `json:"last_read_at"`
}
