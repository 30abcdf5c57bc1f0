package domain

import (
	"encoding/json"
	"fmt"
)

// Stage is the lifecycle status shared by projects and tasks.
type Stage int

const (
	StageNotStarted Stage = iota
	StageInProgress
	StageCompleted
)

var stageNames = map[Stage]string{
	StageNotStarted: "NotStarted",
	StageInProgress: "InProgress",
	StageCompleted:  "Completed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "NotStarted"
}

// ParseStage maps a wire string to a Stage value.
func ParseStage(value string) (Stage, error) {
	for stage, name := range stageNames {
		if name == value {
			return stage, nil
		}
	}
	return StageNotStarted, fmt.Errorf("unknown stage %q", value)
}

func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// InvitationStatus tracks the invitation lifecycle. Accepted and Declined
// are terminal.
type InvitationStatus int

const (
	InvitationPending InvitationStatus = iota
	InvitationAccepted
	InvitationDeclined
)

var invitationStatusNames = map[InvitationStatus]string{
	InvitationPending:  "Pending",
	InvitationAccepted: "Accepted",
	InvitationDeclined: "Declined",
}

func (s InvitationStatus) String() string {
	if name, ok := invitationStatusNames[s]; ok {
		return name
	}
	return "Pending"
}

// Terminal reports whether no further transition is permitted.
func (s InvitationStatus) Terminal() bool {
	return s == InvitationAccepted || s == InvitationDeclined
}

// ParseInvitationStatus maps a wire string to an InvitationStatus value.
func ParseInvitationStatus(value string) (InvitationStatus, error) {
	for status, name := range invitationStatusNames {
		if name == value {
			return status, nil
		}
	}
	return InvitationPending, fmt.Errorf("unknown invitation status %q", value)
}

func (s InvitationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvitationStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseInvitationStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
