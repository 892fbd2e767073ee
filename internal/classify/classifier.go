// Package classify turns a detected difference set into a disposition
// partition by consulting the ticket backlog through one model call.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"uiregression/internal/backlog"
	"uiregression/internal/domain"
	"uiregression/internal/extract"
	"uiregression/internal/integrations/llm"
)

// Classifier decides the disposition of each difference against the backlog.
// Gateways are injected; the classifier holds no global state.
type Classifier struct {
	model   llm.Client
	backlog backlog.Gateway
	prefix  string
}

func New(model llm.Client, gateway backlog.Gateway, prefix string) *Classifier {
	return &Classifier{model: model, backlog: gateway, prefix: prefix}
}

// Classify produces the disposition partition for the given differences.
// An empty difference set short-circuits to an empty partition without
// touching the model. Extraction failures propagate unmodified: guessing
// wrong about ticket state is worse than stopping the run.
func (c *Classifier) Classify(ctx context.Context, differences []domain.Difference) (domain.DispositionPartition, error) {
	if len(differences) == 0 {
		log.Println("classify no differences, skipping model call")
		return domain.DispositionPartition{}, nil
	}

	tickets, err := c.backlog.ListByPrefix(ctx, c.prefix)
	if err != nil {
		return domain.DispositionPartition{}, fmt.Errorf("loading backlog: %w", err)
	}

	prompt, err := buildAnalysisPrompt(differences, tickets)
	if err != nil {
		return domain.DispositionPartition{}, err
	}

	log.Printf("classify differences=%d tickets=%d prefix=%s", len(differences), len(tickets), c.prefix)
	response, err := c.model.CompleteText(ctx, prompt)
	if err != nil {
		return domain.DispositionPartition{}, fmt.Errorf("classification completion: %w", err)
	}

	partition, err := extract.Partition(response)
	if err != nil {
		return domain.DispositionPartition{}, err
	}
	log.Printf("classify resolved=%d pending=%d new=%d",
		len(partition.ResolvedTickets), len(partition.PendingTickets), len(partition.NewTickets))
	return partition, nil
}

// buildAnalysisPrompt embeds the difference set and the prefix-filtered
// backlog as indented JSON below the instruction block.
func buildAnalysisPrompt(differences []domain.Difference, tickets []domain.Ticket) (string, error) {
	diffJSON, err := json.MarshalIndent(differences, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding differences: %w", err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	ticketJSON, err := json.MarshalIndent(tickets, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding tickets: %w", err)
	}

	var b strings.Builder
	b.WriteString(analysisPrompt)
	b.WriteString("\n\nUI DIFFERENCES DETECTED:\n")
	b.Write(diffJSON)
	b.WriteString("\n\nEXISTING TICKETS:\n")
	b.Write(ticketJSON)
	b.WriteString("\n")
	return b.String(), nil
}
