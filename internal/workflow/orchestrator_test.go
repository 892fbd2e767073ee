package workflow

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"uiregression/internal/backlog"
	"uiregression/internal/domain"
	"uiregression/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "workflow-test.db")
	db, err := sqlite.InitDB(dbPath)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlite.NewStore(db, "UI")
}

func seedTicket(t *testing.T, store *sqlite.Store, title string, status domain.TicketStatus) *domain.Ticket {
	t.Helper()
	ticket, err := store.Create(context.Background(), backlog.CreateRequest{
		Title:       title,
		Description: "seeded by test",
		Priority:    domain.PriorityMedium,
		Type:        domain.TypeFeature,
		Status:      domain.StatusTodo,
	})
	if err != nil {
		t.Fatalf("seeding ticket: %v", err)
	}
	if status != domain.StatusTodo {
		if _, err := store.UpdateStatus(context.Background(), ticket.ID, status); err != nil {
			t.Fatalf("seeding status: %v", err)
		}
		ticket.Status = status
	}
	return ticket
}

func TestApplyResolvedTicketsGoDone(t *testing.T) {
	store := newTestStore(t)
	ticket := seedTicket(t, store, "Change color of Login button", domain.StatusInProgress)
	orch := NewOrchestrator(store, nil, nil, "UI")

	report, err := orch.Apply(context.Background(), domain.DispositionPartition{
		ResolvedTickets: []domain.ResolvedTicket{{TicketID: ticket.ID, Reason: "color changed"}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(report.Resolved) != 1 || !report.Resolved[0].OK || report.Resolved[0].Action != "done" {
		t.Fatalf("unexpected resolved outcome: %+v", report.Resolved)
	}

	got, _ := store.Get(context.Background(), ticket.ID)
	if got.Status != domain.StatusDone {
		t.Fatalf("expected done, got %s", got.Status)
	}
}

func TestApplyPendingTicketsGoOnHoldWithComment(t *testing.T) {
	store := newTestStore(t)
	ticket := seedTicket(t, store, "Add Forgot Password link", domain.StatusInProgress)
	orch := NewOrchestrator(store, nil, nil, "UI")

	report, err := orch.Apply(context.Background(), domain.DispositionPartition{
		PendingTickets: []domain.PendingTicket{{TicketID: ticket.ID, Reason: "link is not on the extreme right"}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(report.Pending) != 1 || !report.Pending[0].OK || report.Pending[0].Action != "on_hold" {
		t.Fatalf("unexpected pending outcome: %+v", report.Pending)
	}

	got, _ := store.Get(context.Background(), ticket.ID)
	if got.Status != domain.StatusOnHold {
		t.Fatalf("expected on_hold, got %s", got.Status)
	}
	if got.Comment != "link is not on the extreme right" {
		t.Fatalf("expected reason comment, got %q", got.Comment)
	}
}

func TestApplyUnknownTicketSkipped(t *testing.T) {
	store := newTestStore(t)
	orch := NewOrchestrator(store, nil, nil, "UI")

	report, err := orch.Apply(context.Background(), domain.DispositionPartition{
		ResolvedTickets: []domain.ResolvedTicket{{TicketID: "UI-404", Reason: "hallucinated"}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	out := report.Resolved[0]
	if out.OK || out.Action != "skipped" || out.Detail != "ticket not found" {
		t.Fatalf("unexpected outcome for unknown ticket: %+v", out)
	}
	if report.FailedWrites != 0 {
		t.Fatalf("a skipped ticket is not a failed write, got %d", report.FailedWrites)
	}
}

func TestApplyFilesHighSeverityAndLogsTheRest(t *testing.T) {
	store := newTestStore(t)
	logPath := filepath.Join(t.TempDir(), "minor.jsonl")
	orch := NewOrchestrator(store, NewMinorIssueLog(logPath), FileHighSeverity, "UI")

	report, err := orch.Apply(context.Background(), domain.DispositionPartition{
		NewTickets: []domain.NewIssue{
			{Title: "Header overlaps logo", Description: "layout regression", Severity: domain.SeverityHigh},
			{Title: "Footer font slightly lighter", Description: "cosmetic drift", Severity: domain.SeverityLow},
		},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(report.Created) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(report.Created))
	}
	if report.Created[0].Action != "created" || report.Created[0].TicketID == "" {
		t.Fatalf("high severity issue not filed: %+v", report.Created[0])
	}
	if report.Created[1].Action != "logged" {
		t.Fatalf("low severity issue not logged: %+v", report.Created[1])
	}
	if report.LoggedLocal != 1 {
		t.Fatalf("expected 1 logged, got %d", report.LoggedLocal)
	}

	created, _ := store.Get(context.Background(), report.Created[0].TicketID)
	if created == nil {
		t.Fatal("filed ticket missing from backlog")
	}
	if created.Priority != domain.PriorityHigh || created.Type != domain.TypeFix || created.Status != domain.StatusTodo {
		t.Fatalf("unexpected ticket defaults: %+v", created)
	}
	if created.Assignee != domain.UserFrontendDev || created.Reporter != domain.UserRegressionBot {
		t.Fatalf("unexpected assignment: %+v", created)
	}

	f, err := os.Open(logPath)
	if err != nil {
		t.Fatalf("minor log missing: %v", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	lines := 0
	for scanner.Scan() {
		lines++
		var entry struct {
			Title    string `json:"title"`
			Severity string `json:"severity"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("minor log line is not JSON: %v", err)
		}
		if entry.Title != "Footer font slightly lighter" || entry.Severity != "low" {
			t.Fatalf("unexpected minor log entry: %+v", entry)
		}
	}
	if lines != 1 {
		t.Fatalf("expected 1 minor log line, got %d", lines)
	}
}

func TestApplyFileAllPolicy(t *testing.T) {
	store := newTestStore(t)
	orch := NewOrchestrator(store, nil, FileAll, "UI")

	report, err := orch.Apply(context.Background(), domain.DispositionPartition{
		NewTickets: []domain.NewIssue{
			{Title: "Footer font slightly lighter", Description: "cosmetic drift", Severity: domain.SeverityLow},
		},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if report.Created[0].Action != "created" {
		t.Fatalf("FileAll should file low severity issues too: %+v", report.Created[0])
	}
	if report.LoggedLocal != 0 {
		t.Fatalf("nothing should be logged under FileAll, got %d", report.LoggedLocal)
	}
}

func TestApplyTwiceCreatesNoDuplicates(t *testing.T) {
	store := newTestStore(t)
	orch := NewOrchestrator(store, nil, FileAll, "UI")
	partition := domain.DispositionPartition{
		NewTickets: []domain.NewIssue{
			{Title: "Register button renamed to Sign Up", Description: "unexpected rename", Severity: domain.SeverityHigh},
		},
	}

	first, err := orch.Apply(context.Background(), partition)
	if err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}
	second, err := orch.Apply(context.Background(), partition)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}

	if first.Created[0].Action != "created" {
		t.Fatalf("first application should create: %+v", first.Created[0])
	}
	if second.Created[0].Action != "skipped" || second.Created[0].TicketID != first.Created[0].TicketID {
		t.Fatalf("second application should dedup onto the open ticket: %+v", second.Created[0])
	}

	tickets, _ := store.ListByPrefix(context.Background(), "UI")
	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket after reapply, got %d", len(tickets))
	}
}

func TestApplyTransitionsConverge(t *testing.T) {
	store := newTestStore(t)
	resolved := seedTicket(t, store, "Mask the password field", domain.StatusInReview)
	pending := seedTicket(t, store, "Add Forgot Password link", domain.StatusInProgress)
	orch := NewOrchestrator(store, nil, nil, "UI")
	partition := domain.DispositionPartition{
		ResolvedTickets: []domain.ResolvedTicket{{TicketID: resolved.ID, Reason: "masked with toggle"}},
		PendingTickets:  []domain.PendingTicket{{TicketID: pending.ID, Reason: "link misplaced"}},
	}

	for i := 0; i < 2; i++ {
		if _, err := orch.Apply(context.Background(), partition); err != nil {
			t.Fatalf("Apply %d failed: %v", i, err)
		}
	}

	gotResolved, _ := store.Get(context.Background(), resolved.ID)
	if gotResolved.Status != domain.StatusDone {
		t.Fatalf("resolved ticket should stay done, got %s", gotResolved.Status)
	}
	gotPending, _ := store.Get(context.Background(), pending.ID)
	if gotPending.Status != domain.StatusOnHold || gotPending.Comment != "link misplaced" {
		t.Fatalf("pending ticket should stay on_hold with the comment, got %+v", gotPending)
	}
}

func TestApplyRefilesAfterTicketDone(t *testing.T) {
	store := newTestStore(t)
	orch := NewOrchestrator(store, nil, FileAll, "UI")
	partition := domain.DispositionPartition{
		NewTickets: []domain.NewIssue{
			{Title: "Header overlaps logo", Description: "layout regression", Severity: domain.SeverityHigh},
		},
	}

	first, _ := orch.Apply(context.Background(), partition)
	if _, err := store.UpdateStatus(context.Background(), first.Created[0].TicketID, domain.StatusDone); err != nil {
		t.Fatalf("closing ticket: %v", err)
	}

	second, _ := orch.Apply(context.Background(), partition)
	if second.Created[0].Action != "created" {
		t.Fatalf("a done ticket must not block refiling: %+v", second.Created[0])
	}
}

// flakyCommentGateway delegates to a real store but fails comment writes.
type flakyCommentGateway struct {
	backlog.Gateway
}

func (f *flakyCommentGateway) UpdateComment(ctx context.Context, id, text string) (*domain.Ticket, error) {
	return nil, errors.New("comment column locked")
}

func TestApplyCommentFailureKeepsStatusChange(t *testing.T) {
	store := newTestStore(t)
	ticket := seedTicket(t, store, "Mask the password field", domain.StatusInReview)
	orch := NewOrchestrator(&flakyCommentGateway{Gateway: store}, nil, nil, "UI")

	report, err := orch.Apply(context.Background(), domain.DispositionPartition{
		PendingTickets: []domain.PendingTicket{{TicketID: ticket.ID, Reason: "eye icon missing"}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	out := report.Pending[0]
	if !out.OK || out.Action != "on_hold" {
		t.Fatalf("status change should stand when only the comment fails: %+v", out)
	}
	if out.Detail == "" {
		t.Fatal("comment failure should be noted in the outcome detail")
	}

	got, _ := store.Get(context.Background(), ticket.ID)
	if got.Status != domain.StatusOnHold {
		t.Fatalf("expected on_hold despite comment failure, got %s", got.Status)
	}
}

func TestApplyCountsFailedWrites(t *testing.T) {
	store := newTestStore(t)
	orch := NewOrchestrator(&failingCreateGateway{Gateway: store}, nil, FileAll, "UI")

	report, err := orch.Apply(context.Background(), domain.DispositionPartition{
		NewTickets: []domain.NewIssue{
			{Title: "unfileable", Description: "store down", Severity: domain.SeverityHigh},
		},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if report.Created[0].Action != "failed" {
		t.Fatalf("expected failed outcome: %+v", report.Created[0])
	}
	if report.FailedWrites != 1 {
		t.Fatalf("expected 1 failed write, got %d", report.FailedWrites)
	}
}

type failingCreateGateway struct {
	backlog.Gateway
}

func (f *failingCreateGateway) Create(ctx context.Context, req backlog.CreateRequest) (*domain.Ticket, error) {
	return nil, backlog.ErrUnavailable
}

func TestApplyCancelledContext(t *testing.T) {
	store := newTestStore(t)
	orch := NewOrchestrator(store, nil, nil, "UI")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.Apply(ctx, domain.DispositionPartition{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
