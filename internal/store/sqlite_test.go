package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/campus-assistant/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "assistant.db"))
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return repo
}

func createSession(t *testing.T, repo Repository, id string, updated time.Time) {
	t.Helper()
	progress := 40.0
	err := repo.CreateSession(context.Background(), &domain.Session{
		ID:     id,
		UserID: "anon_1",
		Snapshot: domain.Snapshot{
			Courses: []domain.Course{{ID: "c-1", Title: "Database Systems", Status: domain.CourseOngoing, Progress: &progress}},
			User:    domain.UserProfile{Name: "Asha Verma"},
		},
		CreatedAt: updated,
		UpdatedAt: updated,
	})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	createSession(t, repo, "s-1", now)

	got, err := repo.GetSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got == nil || got.UserID != "anon_1" || got.Closed {
		t.Fatalf("unexpected session: %+v", got)
	}
	if len(got.Snapshot.Courses) != 1 || *got.Snapshot.Courses[0].Progress != 40 {
		t.Errorf("snapshot not restored: %+v", got.Snapshot)
	}

	if err := repo.CloseSession(ctx, "s-1"); err != nil {
		t.Fatalf("CloseSession() error = %v", err)
	}
	got, err = repo.GetSession(ctx, "s-1")
	if err != nil || !got.Closed {
		t.Errorf("expected closed session, got %+v, err %v", got, err)
	}

	missing, err := repo.GetSession(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing session, got %+v, %v", missing, err)
	}
}

func TestMessagesKeepInsertionOrder(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()
	createSession(t, repo, "s-1", time.Now())

	for i := 0; i < 5; i++ {
		msg := domain.Message{
			ID:               fmt.Sprintf("m-%d", i),
			Role:             domain.RoleUser,
			Content:          fmt.Sprintf("message %d", i),
			DisplayTimestamp: "9:00 AM",
			// Same timestamp for all; order must come from insertion.
			CreatedAt: time.Unix(1700000000, 0),
		}
		if err := repo.AppendMessage(ctx, "s-1", msg); err != nil {
			t.Fatalf("AppendMessage() error = %v", err)
		}
	}

	all, err := repo.ListMessages(ctx, "s-1", 0)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(all))
	}
	for i, m := range all {
		if m.ID != fmt.Sprintf("m-%d", i) {
			t.Errorf("message %d: got id %s", i, m.ID)
		}
	}

	recent, err := repo.ListMessages(ctx, "s-1", 2)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "m-3" || recent[1].ID != "m-4" {
		t.Errorf("expected m-3, m-4 in order, got %+v", recent)
	}

	// Message ids are unique.
	if err := repo.AppendMessage(ctx, "s-1", all[0]); err == nil {
		t.Error("expected duplicate message id to fail")
	}
}

func TestTickets(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()
	createSession(t, repo, "s-1", time.Now())

	rec := TicketRecord{
		SessionID: "s-1",
		MessageID: "m-1",
		Source:    "chat",
		Ticket: domain.Ticket{
			ID:            "TCK-1",
			TicketRequest: domain.TicketRequest{Subject: "Grade issue: Database Systems", Category: domain.CategoryGrades},
			Status:        "open",
		},
		CreatedAt: time.Now(),
	}
	if err := repo.SaveTicket(ctx, rec); err != nil {
		t.Fatalf("SaveTicket() error = %v", err)
	}
	// Saving the same ticket twice keeps one echo.
	if err := repo.SaveTicket(ctx, rec); err != nil {
		t.Fatalf("SaveTicket() duplicate error = %v", err)
	}
	form := rec
	form.MessageID = ""
	form.Source = "form"
	form.Ticket.ID = "TCK-2"
	if err := repo.SaveTicket(ctx, form); err != nil {
		t.Fatalf("SaveTicket() error = %v", err)
	}

	got, err := repo.ListTickets(ctx, "s-1")
	if err != nil {
		t.Fatalf("ListTickets() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(got))
	}
	if got[0].Ticket.ID != "TCK-1" || got[0].MessageID != "m-1" || got[0].Ticket.Category != domain.CategoryGrades {
		t.Errorf("unexpected chat ticket: %+v", got[0])
	}
	if got[1].MessageID != "" || got[1].Source != "form" {
		t.Errorf("unexpected form ticket: %+v", got[1])
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	createSession(t, repo, "old", time.Now().Add(-3*time.Hour))
	createSession(t, repo, "fresh", time.Now())
	msg := domain.Message{ID: "m-1", Role: domain.RoleUser, Content: "hi", DisplayTimestamp: "9:00 AM", CreatedAt: time.Now()}
	if err := repo.AppendMessage(ctx, "old", msg); err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}

	n, err := repo.CleanupExpiredSessions(ctx, time.Hour)
	if err != nil {
		t.Fatalf("CleanupExpiredSessions() error = %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired session, got %d", n)
	}

	if s, _ := repo.GetSession(ctx, "old"); s != nil {
		t.Error("expected old session to be removed")
	}
	if s, _ := repo.GetSession(ctx, "fresh"); s == nil {
		t.Error("expected fresh session to remain")
	}
	if msgs, _ := repo.ListMessages(ctx, "old", 0); len(msgs) != 0 {
		t.Errorf("expected messages of expired session to be removed, got %d", len(msgs))
	}
}

func TestPragmasApplyToEveryConnection(t *testing.T) {
	repo := newTestStore(t)
	db := repo.(*SQLiteStore).db
	ctx := context.Background()

	// Hold two connections at once so the second is not the schema connection.
	first, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn() error = %v", err)
	}
	defer first.Close()
	second, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn() error = %v", err)
	}
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var timeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("conn %d: busy_timeout error = %v", i, err)
		}
		if timeout != 5000 {
			t.Errorf("conn %d: busy_timeout = %d, want 5000", i, timeout)
		}
		var mode string
		if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("conn %d: journal_mode error = %v", i, err)
		}
		if mode != "wal" {
			t.Errorf("conn %d: journal_mode = %q, want wal", i, mode)
		}
	}
}
