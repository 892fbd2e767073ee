package notify

import (
	"errors"
	"strings"
	"testing"

	"uiregression/internal/agent"
	"uiregression/internal/domain"
)

func TestFormatRunSummarySuccess(t *testing.T) {
	result := agent.RunResult{
		RunID:  "3f2a9c71-0000-0000-0000-000000000000",
		Status: agent.StatusSuccess,
	}
	got := FormatRunSummary(result)
	if got != "UI regression run 3f2a9c71: no differences detected" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestFormatRunSummaryError(t *testing.T) {
	result := agent.RunResult{
		RunID:  "3f2a9c71-0000-0000-0000-000000000000",
		Status: agent.StatusError,
		Err:    errors.New("compare stage failed: images too similar"),
	}
	got := FormatRunSummary(result)
	if !strings.Contains(got, "failed") || !strings.Contains(got, "images too similar") {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestFormatRunSummaryCompleted(t *testing.T) {
	result := agent.RunResult{
		RunID:            "3f2a9c71-0000-0000-0000-000000000000",
		Status:           agent.StatusCompleted,
		DifferencesFound: 3,
		Report: domain.ExecutionReport{
			Resolved: []domain.Outcome{{TicketID: "UI-003", Action: "done", OK: true}},
			Pending:  []domain.Outcome{{TicketID: "UI-001", Action: "on_hold", OK: true}},
			Created: []domain.Outcome{
				{TicketID: "UI-005", Title: "Register button renamed", Action: "created", OK: true},
				{Title: "Footer font lighter", Action: "logged", OK: true},
			},
			LoggedLocal: 1,
		},
	}
	got := FormatRunSummary(result)

	for _, want := range []string{
		"3 difference(s) detected",
		"resolved UI-003 → done",
		"pending UI-001 → on_hold",
		"filed UI-005: Register button renamed",
		"1 minor issue(s) logged locally",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "failed") {
		t.Errorf("no failures to report, got:\n%s", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("summary should not end with a newline")
	}
}

func TestFormatRunSummaryReportsFailedWrites(t *testing.T) {
	result := agent.RunResult{
		RunID:            "deadbeef-0000-0000-0000-000000000000",
		Status:           agent.StatusCompleted,
		DifferencesFound: 1,
		Report: domain.ExecutionReport{
			Created:      []domain.Outcome{{Title: "unfileable", Action: "failed", Detail: "backlog unavailable"}},
			FailedWrites: 1,
		},
	}
	got := FormatRunSummary(result)
	if !strings.Contains(got, "1 backlog write(s) failed") {
		t.Fatalf("summary missing failure count:\n%s", got)
	}
}

func TestShortIDHandlesShortInput(t *testing.T) {
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}
