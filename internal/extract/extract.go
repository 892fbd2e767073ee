// Package extract recovers structured payloads from free-form model output.
// The model is not guaranteed to emit bare JSON; it may wrap the payload in
// prose or a markdown code fence, or return an error sentinel instead of data.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"uiregression/internal/domain"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// Payload recovers the first JSON object found in raw. Strategies are tried
// in order: the whole text, a ```json fenced block, the greedy brace span.
// A recovered object carrying an "error" code is converted to the matching
// sentinel failure rather than returned as data.
func Payload(raw string) (string, error) {
	text := strings.TrimSpace(raw)

	for _, candidate := range candidates(text) {
		if !gjson.Valid(candidate) || !gjson.Parse(candidate).IsObject() {
			continue
		}
		if err := sentinelError(candidate); err != nil {
			return "", err
		}
		return candidate, nil
	}

	return "", &MalformedResponseError{Raw: raw, Err: fmt.Errorf("no JSON object found in response")}
}

func candidates(text string) []string {
	var out []string
	out = append(out, text)

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		out = append(out, strings.TrimSpace(m[1]))
	}

	// Greedy brace span: first '{' through last '}'.
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			out = append(out, text[start:end+1])
		}
	}
	return out
}

func sentinelError(payload string) error {
	code := gjson.Get(payload, "error")
	if !code.Exists() || code.Str == "" {
		return nil
	}
	switch code.Str {
	case "IMAGES_TOO_SIMILAR":
		return ErrInputsTooSimilar
	case "INVALID_IMAGE":
		return ErrInvalidInputType
	}
	return &UpstreamError{Code: code.Str, Message: gjson.Get(payload, "message").Str}
}

type rawDifference struct {
	ElementType       string `json:"element_type"`
	ChangeDescription string `json:"change_description"`
	Location          string `json:"location"`
	Severity          string `json:"severity"`
	Details           string `json:"details"`
}

// Differences extracts and validates a difference list from raw model output.
// Unknown keys are ignored; a difference without a change description, or a
// payload whose differences field is not a list, is malformed.
func Differences(raw string) ([]domain.Difference, error) {
	payload, err := Payload(raw)
	if err != nil {
		return nil, err
	}

	var body struct {
		Differences []rawDifference `json:"differences"`
	}
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("decoding differences: %w", err)}
	}
	if !gjson.Get(payload, "differences").IsArray() {
		return nil, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("response has no differences list")}
	}

	diffs := make([]domain.Difference, 0, len(body.Differences))
	for i, d := range body.Differences {
		if strings.TrimSpace(d.ChangeDescription) == "" {
			return nil, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("difference %d has no change_description", i)}
		}
		severity, ok := domain.NormalizeSeverity(d.Severity)
		if !ok {
			severity = domain.SeverityLow
		}
		diffs = append(diffs, domain.Difference{
			ElementType:       strings.TrimSpace(d.ElementType),
			ChangeDescription: strings.TrimSpace(d.ChangeDescription),
			Location:          strings.TrimSpace(d.Location),
			Severity:          severity,
			Details:           strings.TrimSpace(d.Details),
		})
	}
	return diffs, nil
}

type rawTicketRef struct {
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason"`
}

type rawNewIssue struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Priority    string `json:"priority"`
	Type        string `json:"type"`
	ElementType string `json:"element_type"`
	Location    string `json:"location"`
}

// Partition extracts and validates a disposition partition from raw model
// output. Resolved/pending entries require a ticket id; new issues require a
// title and description.
func Partition(raw string) (domain.DispositionPartition, error) {
	payload, err := Payload(raw)
	if err != nil {
		return domain.DispositionPartition{}, err
	}

	var body struct {
		Resolved []rawTicketRef `json:"resolved_tickets"`
		Pending  []rawTicketRef `json:"pending_tickets"`
		New      []rawNewIssue  `json:"new_tickets"`
	}
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return domain.DispositionPartition{}, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("decoding partition: %w", err)}
	}
	for _, key := range []string{"resolved_tickets", "pending_tickets", "new_tickets"} {
		if !gjson.Get(payload, key).IsArray() {
			return domain.DispositionPartition{}, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("response has no %s list", key)}
		}
	}

	var partition domain.DispositionPartition
	for i, r := range body.Resolved {
		if strings.TrimSpace(r.TicketID) == "" {
			return domain.DispositionPartition{}, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("resolved entry %d has no ticket_id", i)}
		}
		partition.ResolvedTickets = append(partition.ResolvedTickets, domain.ResolvedTicket{
			TicketID: strings.TrimSpace(r.TicketID),
			Reason:   strings.TrimSpace(r.Reason),
		})
	}
	for i, p := range body.Pending {
		if strings.TrimSpace(p.TicketID) == "" {
			return domain.DispositionPartition{}, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("pending entry %d has no ticket_id", i)}
		}
		partition.PendingTickets = append(partition.PendingTickets, domain.PendingTicket{
			TicketID: strings.TrimSpace(p.TicketID),
			Reason:   strings.TrimSpace(p.Reason),
		})
	}
	for i, n := range body.New {
		if strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Description) == "" {
			return domain.DispositionPartition{}, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("new issue %d missing title or description", i)}
		}
		severity, ok := domain.NormalizeSeverity(n.Severity)
		if !ok {
			severity = domain.SeverityMedium
		}
		issue := domain.NewIssue{
			Title:       strings.TrimSpace(n.Title),
			Description: strings.TrimSpace(n.Description),
			Severity:    severity,
			ElementType: strings.TrimSpace(n.ElementType),
			Location:    strings.TrimSpace(n.Location),
		}
		if p := domain.TicketPriority(strings.ToLower(strings.TrimSpace(n.Priority))); domain.ValidPriority(p) {
			issue.Priority = p
		}
		if t := domain.TicketType(strings.ToLower(strings.TrimSpace(n.Type))); domain.ValidType(t) {
			issue.Type = t
		}
		partition.NewTickets = append(partition.NewTickets, issue)
	}
	return partition, nil
}
