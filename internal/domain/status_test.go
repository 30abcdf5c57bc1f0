package domain

import (
	"encoding/json"
	"testing"
)

func TestStageWireRoundTrip(t *testing.T) {
	payload, err := json.Marshal(StageInProgress)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(payload) != `"InProgress"` {
		t.Fatalf("expected name on the wire, got %s", payload)
	}

	var stage Stage
	if err := json.Unmarshal(payload, &stage); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if stage != StageInProgress {
		t.Fatalf("expected InProgress, got %s", stage)
	}
}

func TestParseStageRejectsUnknown(t *testing.T) {
	if _, err := ParseStage("Paused"); err == nil {
		t.Fatal("expected error for unknown stage")
	}
	var stage Stage
	if err := json.Unmarshal([]byte(`"Paused"`), &stage); err == nil {
		t.Fatal("expected unmarshal to reject unknown stage")
	}
}

func TestInvitationStatusTerminal(t *testing.T) {
	if InvitationPending.Terminal() {
		t.Fatal("Pending must not be terminal")
	}
	if !InvitationAccepted.Terminal() {
		t.Fatal("Accepted must be terminal")
	}
	if !InvitationDeclined.Terminal() {
		t.Fatal("Declined must be terminal")
	}
}

func TestParseMembershipRoleRejectsOwnerAndNone(t *testing.T) {
	for _, value := range []string{"Owner", "None", "Superuser", ""} {
		if _, err := ParseMembershipRole(value); err == nil {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
	for _, value := range []string{"Admin", "Member", "Viewer"} {
		role, err := ParseMembershipRole(value)
		if err != nil {
			t.Fatalf("expected %q to parse, got %v", value, err)
		}
		if string(role) != value {
			t.Fatalf("expected %q, got %q", value, role)
		}
	}
}
