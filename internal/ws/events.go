package ws

import "strconv"

// Event names delivered to project groups.
const (
	EventProjectDetailsUpdated = "ProjectDetailsUpdated"
	EventProjectDeleted        = "ProjectDeleted"
	EventTaskCreated           = "TaskCreated"
	EventTaskStatusUpdated     = "TaskStatusUpdated"
	EventTaskDeleted           = "TaskDeleted"
	EventNoteAdded             = "NoteAdded"
	EventReceiveChatMessage    = "ReceiveChatMessage"
)

// Event names delivered to user groups.
const (
	EventInvitationReceived = "InvitationReceived"
)

// ProjectGroup is the group key for clients viewing a project.
func ProjectGroup(projectID int64) string {
	return "project:" + strconv.FormatInt(projectID, 10)
}

// UserGroup is the personal group key for an authenticated user.
func UserGroup(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}
