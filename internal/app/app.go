// Package app wires the pipeline together: config, storage, gateways,
// classifier, orchestrator and the optional schedule and Slack summary.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"

	"uiregression/internal/agent"
	"uiregression/internal/classify"
	"uiregression/internal/config"
	"uiregression/internal/integrations/llm"
	"uiregression/internal/notify"
	"uiregression/internal/storage/sqlite"
	"uiregression/internal/workflow"
)

func Main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: uiregression <baseline_image> <updated_image>")
		fmt.Fprintln(os.Stderr, "Example: uiregression screenshots/login_baseline.png screenshots/login_updated.png")
		os.Exit(1)
	}
	baselinePath, updatedPath := os.Args[1], os.Args[2]

	for _, path := range []string{baselinePath, updatedPath} {
		if _, err := os.Stat(path); err != nil {
			log.Fatalf("Screenshot not found: %s", path)
		}
	}

	cfg := config.LoadConfig()
	if cfg.AnthropicAPIKey == "" {
		log.Fatal("anthropic_api_key is required (config.yaml or ANTHROPIC_API_KEY)")
	}

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	if cfg.SeedPath != "" {
		n, err := sqlite.SeedFromFile(db, cfg.SeedPath)
		if err != nil {
			log.Fatalf("Failed to seed backlog from %s: %v", cfg.SeedPath, err)
		}
		log.Printf("Seeded %d ticket(s) from %s", n, cfg.SeedPath)
	}

	store := sqlite.NewStore(db, cfg.TicketPrefix)

	var cache llm.Cache
	if cfg.LLMCacheEnabled {
		cache = sqlite.NewCompletionCache(db)
	}
	model := llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.LLMModel, int64(cfg.LLMMaxTokens), cache)

	policy := workflow.FileHighSeverity
	if cfg.FileAllNewIssues {
		policy = workflow.FileAll
	}
	minorLog := workflow.NewMinorIssueLog(cfg.MinorIssueLogPath)

	classifier := classify.New(model, store, cfg.TicketPrefix)
	orchestrator := workflow.NewOrchestrator(store, minorLog, policy, cfg.TicketPrefix)
	runner := agent.NewRunner(model, classifier, orchestrator)

	var api *slack.Client
	if cfg.SlackBotToken != "" && cfg.SlackChannelID != "" {
		api = slack.New(cfg.SlackBotToken)
	}

	runOnce := func() agent.RunResult {
		result := runner.Run(context.Background(), baselinePath, updatedPath)
		printResult(result)
		notify.PostRunSummary(api, cfg.SlackChannelID, result)
		return result
	}

	result := runOnce()

	if cfg.Schedule == "" {
		if result.Status == agent.StatusError {
			os.Exit(1)
		}
		return
	}

	// Scheduled mode: repeat the comparison on a standard 5-field cron
	// expression, e.g. "0 9 * * 1-5" for weekday mornings.
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(strings.TrimSpace(cfg.Schedule))
	if err != nil {
		log.Fatalf("Invalid schedule '%s': %v", cfg.Schedule, err)
	}
	log.Printf("Scheduled mode (cron: %s)", cfg.Schedule)

	for {
		now := time.Now()
		next := sched.Next(now)
		log.Printf("Next run at %s (in %s)", next.Format("Mon Jan 2 15:04"), next.Sub(now).Round(time.Minute))
		time.Sleep(next.Sub(now))
		runOnce()
	}
}

func printResult(result agent.RunResult) {
	switch result.Status {
	case agent.StatusSuccess:
		fmt.Println("No differences detected - screenshots match.")
	case agent.StatusError:
		fmt.Printf("Run failed: %v\n", result.Err)
	case agent.StatusCompleted:
		fmt.Printf("Differences found: %d\n", result.DifferencesFound)
		for _, d := range result.Differences {
			fmt.Printf("  [%s] %s - %s (%s)\n", d.Severity, d.ElementType, d.ChangeDescription, d.Location)
		}
		report := result.Report
		for _, out := range report.Resolved {
			if out.OK {
				fmt.Printf("  Ticket resolved: %s (status: done)\n", out.TicketID)
			}
		}
		for _, out := range report.Pending {
			if out.OK {
				fmt.Printf("  Ticket needs work: %s (status: on_hold)\n", out.TicketID)
			}
		}
		for _, out := range report.Created {
			switch out.Action {
			case "created":
				fmt.Printf("  Ticket created: %s - %s\n", out.TicketID, out.Title)
			case "skipped":
				fmt.Printf("  Duplicate skipped: %s - %s\n", out.TicketID, out.Title)
			}
		}
		if report.LoggedLocal > 0 {
			fmt.Printf("  Minor issues logged: %d\n", report.LoggedLocal)
		}
		if report.FailedWrites > 0 {
			fmt.Printf("  Failed backlog writes: %d\n", report.FailedWrites)
		}
	}
}
