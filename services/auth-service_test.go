package services

import (
	"testing"

	"github.com/malika-ai/project-management-prototype/models"
)

func TestLoginBootstrapCreatesAdmin(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestService(gw)
	auth := NewAuthService(s, "test-secret")

	member, token, err := auth.LoginUser("boss@agency.test", "hunter2")
	if err != nil {
		t.Fatalf("bootstrap login failed: %v", err)
	}
	if token == "" {
		t.Error("expected a signed token")
	}
	if member.Role != models.RoleAdmin {
		t.Errorf("expected admin role, got %s", member.Role)
	}
	if member.Email != "boss@agency.test" || member.Password != "hunter2" {
		t.Errorf("expected submitted credentials stored, got %+v", member)
	}

	// Ponovna prijava istim kredencijalima ne sme da napravi drugi nalog.
	second, _, err := auth.LoginUser("BOSS@agency.test", "hunter2")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if second.ID != member.ID {
		t.Errorf("expected the same member, got %s and %s", member.ID, second.ID)
	}
	if team := s.SnapshotState().Team; len(team) != 1 {
		t.Errorf("expected a single roster entry, got %d", len(team))
	}
}

func TestLoginMatchesEmailCaseInsensitively(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestService(gw)
	auth := NewAuthService(s, "test-secret")

	if _, err := s.AddMember("Mila", "mila@agency.test", "pw123", models.RoleMember, ""); err != nil {
		t.Fatalf("add member failed: %v", err)
	}

	if _, _, err := auth.LoginUser("MILA@Agency.Test", "pw123"); err != nil {
		t.Errorf("expected case-insensitive email match, got %v", err)
	}

	if _, _, err := auth.LoginUser("mila@agency.test", "PW123"); err == nil {
		t.Error("expected exact password match to fail")
	}

	if _, _, err := auth.LoginUser("unknown@agency.test", "pw123"); err == nil {
		t.Error("expected unknown email to fail on a non-empty roster")
	}
}

func TestRemoveMember(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestService(gw)

	m, err := s.AddMember("Mila", "mila@agency.test", "pw123", models.RoleMember, "")
	if err != nil {
		t.Fatalf("add member failed: %v", err)
	}

	if !s.RemoveMember(m.ID) {
		t.Fatal("expected removal to succeed")
	}
	if s.RemoveMember(m.ID) {
		t.Error("expected second removal to report missing member")
	}
	if team := s.SnapshotState().Team; len(team) != 0 {
		t.Errorf("expected empty roster, got %d", len(team))
	}
}

func TestAddMemberRejectsDuplicateEmail(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestService(gw)

	if _, err := s.AddMember("Mila", "mila@agency.test", "pw123", models.RoleMember, ""); err != nil {
		t.Fatalf("add member failed: %v", err)
	}
	if _, err := s.AddMember("Mila2", "MILA@agency.test", "pw456", models.RoleMember, ""); err == nil {
		t.Error("expected duplicate email to be rejected case-insensitively")
	}
}
