package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"uiregression/internal/domain"
)

// MinorIssueLog is the lightweight local destination for new issues the
// filing policy keeps out of the backlog. Entries are appended as JSON lines.
type MinorIssueLog struct {
	path string
	mu   sync.Mutex
}

func NewMinorIssueLog(path string) *MinorIssueLog {
	return &MinorIssueLog{path: path}
}

type minorIssueEntry struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ElementType string          `json:"element_type,omitempty"`
	Location    string          `json:"location,omitempty"`
	Severity    domain.Severity `json:"severity"`
	LoggedAt    time.Time       `json:"logged_at"`
}

func (l *MinorIssueLog) Append(issue domain.NewIssue) error {
	entry := minorIssueEntry{
		Title:       issue.Title,
		Description: issue.Description,
		ElementType: issue.ElementType,
		Location:    issue.Location,
		Severity:    issue.Severity,
		LoggedAt:    time.Now().UTC(),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding minor issue: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening minor issue log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing minor issue log: %w", err)
	}
	return nil
}
