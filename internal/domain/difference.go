package domain

import "strings"

// Severity rates the visual impact of a detected difference.
// The canonical scale is low < medium < high.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// NormalizeSeverity maps a raw severity string onto the canonical scale.
// The model occasionally drifts into the older critical/minor/cosmetic
// taxonomy; both map here so only one scale exists past extraction.
func NormalizeSeverity(raw string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low", "cosmetic":
		return SeverityLow, true
	case "medium", "minor":
		return SeverityMedium, true
	case "high", "critical":
		return SeverityHigh, true
	}
	return "", false
}

// PriorityForSeverity picks the backlog priority for a newly filed issue.
func PriorityForSeverity(s Severity) TicketPriority {
	switch s {
	case SeverityHigh:
		return PriorityHigh
	case SeverityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Difference is one visual change detected between the baseline and updated
// screenshots. Immutable once produced; consumed only by the classifier.
type Difference struct {
	ElementType       string   `json:"element_type"`
	ChangeDescription string   `json:"change_description"`
	Location          string   `json:"location"`
	Severity          Severity `json:"severity"`
	Details           string   `json:"details,omitempty"`
}
