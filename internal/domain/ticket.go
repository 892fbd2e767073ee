package domain

import "time"

// TicketStatus is a ticket's position in the backlog workflow.
type TicketStatus string

const (
	StatusTodo       TicketStatus = "todo"
	StatusInProgress TicketStatus = "in_progress"
	StatusInReview   TicketStatus = "in_review"
	StatusOnHold     TicketStatus = "on_hold"
	StatusDone       TicketStatus = "done"
)

// TicketType classifies the kind of work a ticket tracks.
type TicketType string

const (
	TypeFeature TicketType = "feature"
	TypeFix     TicketType = "fix"
	TypePerf    TicketType = "perf_improvement"
)

// TicketPriority is the backlog priority of a ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
)

// Well-known users seeded in the backlog.
const (
	UserFrontendDev    = "frontend.dev"
	UserBackendDev     = "backend.dev"
	UserProductManager = "product.manager"
	UserProductTester  = "product.tester"
	UserRegressionBot  = "ui_regression.agent"
)

// Ticket is one unit of backlog work. Tickets are created once and mutated
// only through status and comment updates; they are never deleted.
type Ticket struct {
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Status      TicketStatus   `json:"status" yaml:"status"`
	Priority    TicketPriority `json:"priority" yaml:"priority"`
	Type        TicketType     `json:"type" yaml:"type"`
	Created     time.Time      `json:"created" yaml:"created"`
	Updated     time.Time      `json:"updated" yaml:"updated"`
	Assignee    string         `json:"assignee" yaml:"assignee"`
	Reporter    string         `json:"reporter" yaml:"reporter"`
	Comment     string         `json:"comment,omitempty" yaml:"comment,omitempty"`
}

func ValidStatus(s TicketStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusOnHold, StatusDone:
		return true
	}
	return false
}

func ValidType(t TicketType) bool {
	switch t {
	case TypeFeature, TypeFix, TypePerf:
		return true
	}
	return false
}

func ValidPriority(p TicketPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
