// Package workflow applies a disposition partition to the ticket backlog:
// status transitions for resolved and pending tickets, creation or local
// logging of new issues, and a per-run execution report.
package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"uiregression/internal/backlog"
	"uiregression/internal/domain"
)

// FilingPolicy decides whether a new issue becomes a backlog ticket or an
// entry in the local minor-issue log.
type FilingPolicy func(issue domain.NewIssue) bool

// FileHighSeverity is the default policy: only high-severity issues reach the
// backlog, the rest go to the minor-issue log.
func FileHighSeverity(issue domain.NewIssue) bool {
	return issue.Severity == domain.SeverityHigh
}

// FileAll files every new issue as a ticket.
func FileAll(domain.NewIssue) bool { return true }

// Orchestrator drives ticket lifecycle transitions. Every mutation it issues
// is idempotent, so a partial run can be retried from scratch without
// compensation.
type Orchestrator struct {
	backlog  backlog.Gateway
	minorLog *MinorIssueLog
	policy   FilingPolicy
	prefix   string
	assignee string
	reporter string
}

func NewOrchestrator(gateway backlog.Gateway, minorLog *MinorIssueLog, policy FilingPolicy, prefix string) *Orchestrator {
	if policy == nil {
		policy = FileHighSeverity
	}
	return &Orchestrator{
		backlog:  gateway,
		minorLog: minorLog,
		policy:   policy,
		prefix:   prefix,
		assignee: domain.UserFrontendDev,
		reporter: domain.UserRegressionBot,
	}
}

// Apply executes the partition against the backlog in resolved, pending, new
// order. Per-ticket failures are recorded in the report and never abort the
// remaining items; only a nil report indicates the run itself broke.
func (o *Orchestrator) Apply(ctx context.Context, partition domain.DispositionPartition) (domain.ExecutionReport, error) {
	var report domain.ExecutionReport

	if err := ctx.Err(); err != nil {
		return report, err
	}
	for _, resolved := range partition.ResolvedTickets {
		report.Resolved = append(report.Resolved, o.transition(ctx, resolved.TicketID, domain.StatusDone, ""))
	}
	for _, pending := range partition.PendingTickets {
		report.Pending = append(report.Pending, o.transition(ctx, pending.TicketID, domain.StatusOnHold, pending.Reason))
	}
	for _, issue := range partition.NewTickets {
		outcome := o.fileOrLog(ctx, issue)
		if outcome.Action == "logged" {
			report.LoggedLocal++
		}
		report.Created = append(report.Created, outcome)
	}

	for _, outcomes := range [][]domain.Outcome{report.Resolved, report.Pending, report.Created} {
		for _, out := range outcomes {
			if !out.OK && out.Action == "failed" {
				report.FailedWrites++
			}
		}
	}
	log.Printf("workflow applied resolved=%d pending=%d created=%d logged=%d failed=%d",
		len(report.Resolved), len(report.Pending), len(report.Created), report.LoggedLocal, report.FailedWrites)
	return report, nil
}

// transition moves one existing ticket to the target status. For pending
// tickets a comment carrying the reason is attached only after the status
// change succeeds; a failed comment write downgrades the outcome detail but
// not the status change itself.
func (o *Orchestrator) transition(ctx context.Context, ticketID string, status domain.TicketStatus, comment string) domain.Outcome {
	updated, err := o.backlog.UpdateStatus(ctx, ticketID, status)
	if err != nil {
		log.Printf("workflow status update failed ticket=%s status=%s err=%v", ticketID, status, err)
		return domain.Outcome{TicketID: ticketID, Action: "failed", Detail: err.Error()}
	}
	if updated == nil {
		log.Printf("workflow ticket not found ticket=%s", ticketID)
		return domain.Outcome{TicketID: ticketID, Action: "skipped", Detail: "ticket not found"}
	}

	outcome := domain.Outcome{TicketID: ticketID, Action: string(status), OK: true}
	if comment == "" {
		return outcome
	}
	if _, err := o.backlog.UpdateComment(ctx, ticketID, comment); err != nil {
		// Comments are best-effort annotations, not part of the state
		// invariant: the status change stands.
		log.Printf("workflow comment write failed ticket=%s err=%v", ticketID, err)
		outcome.Detail = fmt.Sprintf("status updated, comment failed: %v", err)
	}
	return outcome
}

func (o *Orchestrator) fileOrLog(ctx context.Context, issue domain.NewIssue) domain.Outcome {
	if !o.policy(issue) {
		if o.minorLog != nil {
			if err := o.minorLog.Append(issue); err != nil {
				log.Printf("workflow minor log failed title=%q err=%v", issue.Title, err)
				return domain.Outcome{Title: issue.Title, Action: "failed", Detail: err.Error()}
			}
		}
		return domain.Outcome{Title: issue.Title, Action: "logged", OK: true}
	}

	if existing := o.findOpenDuplicate(ctx, issue.Title); existing != "" {
		return domain.Outcome{
			TicketID: existing,
			Title:    issue.Title,
			Action:   "skipped",
			OK:       true,
			Detail:   "open ticket with identical title already exists",
		}
	}

	priority := issue.Priority
	if !domain.ValidPriority(priority) {
		priority = domain.PriorityForSeverity(issue.Severity)
	}
	ticketType := issue.Type
	if !domain.ValidType(ticketType) {
		ticketType = domain.TypeFix
	}

	created, err := o.backlog.Create(ctx, backlog.CreateRequest{
		Title:       issue.Title,
		Description: issue.Description,
		Priority:    priority,
		Type:        ticketType,
		Assignee:    o.assignee,
		Reporter:    o.reporter,
		Status:      domain.StatusTodo,
	})
	if err != nil {
		log.Printf("workflow create failed title=%q err=%v", issue.Title, err)
		return domain.Outcome{Title: issue.Title, Action: "failed", Detail: err.Error()}
	}
	log.Printf("workflow ticket created id=%s title=%q", created.ID, created.Title)
	return domain.Outcome{TicketID: created.ID, Title: created.Title, Action: "created", OK: true}
}

// findOpenDuplicate is the dedup key for re-applied partitions: a non-done
// ticket under the same prefix with an identical title blocks a second
// creation.
func (o *Orchestrator) findOpenDuplicate(ctx context.Context, title string) string {
	matches, err := o.backlog.Search(ctx, title)
	if err != nil {
		log.Printf("workflow dedup search failed title=%q err=%v", title, err)
		return ""
	}
	for _, t := range matches {
		if strings.HasPrefix(t.ID, o.prefix+"-") &&
			strings.EqualFold(t.Title, title) &&
			t.Status != domain.StatusDone {
			return t.ID
		}
	}
	return ""
}
