package models

import (
	"testing"
	"time"
)

func sessionAt(date time.Time, startHour, maxPlayers, attendees int) *SportSession {
	return &SportSession{
		Date:          date,
		StartTime:     time.Date(0, 1, 1, startHour, 0, 0, 0, time.UTC),
		Format:        FormatSolo,
		MaxPlayers:    maxPlayers,
		AttendeeCount: attendees,
	}
}

func TestComputeStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		session *SportSession
		want    SessionStatus
	}{
		{"future with spots", sessionAt(day, 19, 10, 3), SessionOpen},
		{"future and full", sessionAt(day, 19, 4, 4), SessionLocked},
		{"started with enough players", sessionAt(day, 8, 10, 2), SessionFinished},
		{"started short of players", sessionAt(day, 8, 10, 1), SessionCanceled},
		{"starts exactly now", sessionAt(day, 12, 10, 2), SessionFinished},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.ComputeStatus(now); got != tt.want {
				t.Errorf("ComputeStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRequiredPlayers(t *testing.T) {
	min := func(v int) *int { return &v }

	tests := []struct {
		name    string
		session *SportSession
		want    int
	}{
		{"solo default", &SportSession{Format: FormatSolo, MaxPlayers: 10}, 2},
		{"solo for one", &SportSession{Format: FormatSolo, MaxPlayers: 1}, 1},
		{"1v1", &SportSession{Format: FormatVersus1v1, MaxPlayers: 2}, 2},
		{"teams min 3 per side", &SportSession{Format: FormatVersusTeam, MaxPlayers: 12, MinPerTeam: min(3)}, 6},
		{"teams min 1 per side", &SportSession{Format: FormatTeam, MaxPlayers: 12, MinPerTeam: min(1)}, 2},
		{"teams without min", &SportSession{Format: FormatVersusTeam, MaxPlayers: 12}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.RequiredPlayers(); got != tt.want {
				t.Errorf("RequiredPlayers = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHasStartedBoundary(t *testing.T) {
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	s := sessionAt(day, 12, 10, 0)

	before := time.Date(2025, 6, 15, 11, 59, 0, 0, time.UTC)
	exact := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	if s.HasStarted(before) {
		t.Error("session must not be started a minute before start")
	}
	if !s.HasStarted(exact) {
		t.Error("session is started at the exact start moment")
	}
}

func TestCapacity(t *testing.T) {
	s := &SportSession{MaxPlayers: 4, AttendeeCount: 3}
	if s.IsFull() {
		t.Error("3 of 4 is not full")
	}
	if got := s.AvailableSpots(); got != 1 {
		t.Errorf("AvailableSpots = %d, want 1", got)
	}

	s.AttendeeCount = 5
	if !s.IsFull() {
		t.Error("over capacity is full")
	}
	if got := s.AvailableSpots(); got != 0 {
		t.Errorf("AvailableSpots = %d, want 0", got)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	for status, want := range map[SessionStatus]bool{
		SessionDraft:    false,
		SessionOpen:     false,
		SessionLocked:   false,
		SessionFinished: true,
		SessionCanceled: true,
	} {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}
