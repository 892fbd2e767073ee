// Package notify posts run summaries to Slack. Posting is best-effort and
// never affects run status.
package notify

import (
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"

	"uiregression/internal/agent"
)

// FormatRunSummary renders a run result as a short Slack message.
func FormatRunSummary(result agent.RunResult) string {
	var b strings.Builder

	switch result.Status {
	case agent.StatusSuccess:
		fmt.Fprintf(&b, "UI regression run %s: no differences detected", shortID(result.RunID))
		return b.String()
	case agent.StatusError:
		fmt.Fprintf(&b, "UI regression run %s failed: %v", shortID(result.RunID), result.Err)
		return b.String()
	}

	fmt.Fprintf(&b, "UI regression run %s: %d difference(s) detected\n", shortID(result.RunID), result.DifferencesFound)
	report := result.Report
	for _, out := range report.Resolved {
		if out.OK {
			fmt.Fprintf(&b, "• resolved %s → done\n", out.TicketID)
		}
	}
	for _, out := range report.Pending {
		if out.OK {
			fmt.Fprintf(&b, "• pending %s → on_hold\n", out.TicketID)
		}
	}
	for _, out := range report.Created {
		switch out.Action {
		case "created":
			fmt.Fprintf(&b, "• filed %s: %s\n", out.TicketID, out.Title)
		case "skipped":
			fmt.Fprintf(&b, "• duplicate of %s: %s\n", out.TicketID, out.Title)
		}
	}
	if report.LoggedLocal > 0 {
		fmt.Fprintf(&b, "• %d minor issue(s) logged locally\n", report.LoggedLocal)
	}
	if report.FailedWrites > 0 {
		fmt.Fprintf(&b, "• %d backlog write(s) failed\n", report.FailedWrites)
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

// PostRunSummary sends the formatted summary to the configured channel.
func PostRunSummary(api *slack.Client, channelID string, result agent.RunResult) {
	if api == nil || channelID == "" {
		return
	}
	text := FormatRunSummary(result)
	if _, _, err := api.PostMessage(channelID, slack.MsgOptionText(text, false)); err != nil {
		log.Printf("notify slack post error: %v", err)
	}
}
