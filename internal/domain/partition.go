package domain

// ResolvedTicket marks an existing backlog ticket whose change now appears
// correctly implemented in the updated screenshot.
type ResolvedTicket struct {
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason"`
}

// PendingTicket marks an existing backlog ticket whose change is present but
// not yet correct; Reason records the specific mismatch.
type PendingTicket struct {
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason"`
}

// NewIssue describes a detected change with no backlog match.
type NewIssue struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Severity    Severity       `json:"severity"`
	Priority    TicketPriority `json:"priority,omitempty"`
	Type        TicketType     `json:"type,omitempty"`
	ElementType string         `json:"element_type,omitempty"`
	Location    string         `json:"location,omitempty"`
}

// DispositionPartition is the classifier's verdict: three disjoint lists
// covering every detected difference. It is produced fresh each run and never
// persisted; only its effects reach the backlog.
type DispositionPartition struct {
	ResolvedTickets []ResolvedTicket `json:"resolved_tickets"`
	PendingTickets  []PendingTicket  `json:"pending_tickets"`
	NewTickets      []NewIssue       `json:"new_tickets"`
}

func (p DispositionPartition) Empty() bool {
	return len(p.ResolvedTickets) == 0 && len(p.PendingTickets) == 0 && len(p.NewTickets) == 0
}

// Outcome of one attempted ticket mutation or creation.
type Outcome struct {
	TicketID string `json:"ticket_id,omitempty"`
	Title    string `json:"title,omitempty"`
	Action   string `json:"action"` // "done", "on_hold", "created", "skipped", "failed", "logged"
	OK       bool   `json:"ok"`
	Detail   string `json:"detail,omitempty"`
}

// ExecutionReport records, per disposition list, what the orchestrator
// actually did to the backlog during one run.
type ExecutionReport struct {
	RunID        string    `json:"run_id"`
	Resolved     []Outcome `json:"resolved"`
	Pending      []Outcome `json:"pending"`
	Created      []Outcome `json:"created"`
	LoggedLocal  int       `json:"logged_local"`
	FailedWrites int       `json:"failed_writes"`
}
