// Package agent runs the regression pipeline: screenshots through the vision
// model, the recovered differences through the classifier, and the resulting
// partition through the workflow orchestrator.
package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"uiregression/internal/domain"
	"uiregression/internal/extract"
	"uiregression/internal/integrations/llm"
)

// RunStatus is the top-level verdict of one run.
type RunStatus string

const (
	// StatusSuccess means the screenshots matched: zero differences.
	StatusSuccess RunStatus = "success"
	// StatusCompleted means differences were found, classified and applied.
	StatusCompleted RunStatus = "completed"
	// StatusError means a stage failed and the run stopped.
	StatusError RunStatus = "error"
)

// Pipeline stages, named in StageError.
const (
	StageCompare  = "compare"
	StageClassify = "classify"
	StageApply    = "apply"
)

// StageError identifies which pipeline stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// RunResult is the exposed outcome of one regression run.
type RunResult struct {
	RunID            string                      `json:"run_id"`
	Status           RunStatus                   `json:"status"`
	DifferencesFound int                         `json:"differences_found"`
	Differences      []domain.Difference         `json:"differences,omitempty"`
	Partition        domain.DispositionPartition `json:"partition"`
	Report           domain.ExecutionReport      `json:"execution_report"`
	Err              error                       `json:"-"`
}

// Classifier and Applier are the downstream stages, injected so tests can
// substitute fakes.
type Classifier interface {
	Classify(ctx context.Context, differences []domain.Difference) (domain.DispositionPartition, error)
}

type Applier interface {
	Apply(ctx context.Context, partition domain.DispositionPartition) (domain.ExecutionReport, error)
}

// Runner is the single-run pipeline. It holds no retry or timeout logic;
// callers bound the gateways through ctx.
type Runner struct {
	model      llm.Client
	classifier Classifier
	applier    Applier
}

func NewRunner(model llm.Client, classifier Classifier, applier Applier) *Runner {
	return &Runner{model: model, classifier: classifier, applier: applier}
}

// Run compares the two screenshots and drives the full pipeline. A failed
// stage yields StatusError with the stage identified; it is never downgraded
// to an empty result.
func (r *Runner) Run(ctx context.Context, baselinePath, updatedPath string) RunResult {
	runID := uuid.NewString()
	log.Printf("run start id=%s baseline=%s updated=%s", runID, baselinePath, updatedPath)

	result := RunResult{RunID: runID}

	response, err := r.model.CompleteVision(ctx, comparisonPrompt, []string{baselinePath, updatedPath})
	if err != nil {
		return result.fail(StageCompare, err)
	}
	differences, err := extract.Differences(response)
	if err != nil {
		return result.fail(StageCompare, err)
	}
	result.Differences = differences
	result.DifferencesFound = len(differences)

	if len(differences) == 0 {
		log.Printf("run id=%s no differences detected", runID)
		result.Status = StatusSuccess
		return result
	}

	partition, err := r.classifier.Classify(ctx, differences)
	if err != nil {
		return result.fail(StageClassify, err)
	}
	result.Partition = partition

	report, err := r.applier.Apply(ctx, partition)
	if err != nil {
		return result.fail(StageApply, err)
	}
	report.RunID = runID
	result.Report = report

	result.Status = StatusCompleted
	log.Printf("run done id=%s differences=%d resolved=%d pending=%d created=%d",
		runID, result.DifferencesFound,
		len(report.Resolved), len(report.Pending), len(report.Created))
	return result
}

func (r RunResult) fail(stage string, err error) RunResult {
	r.Status = StatusError
	r.Err = &StageError{Stage: stage, Err: err}
	log.Printf("run error id=%s stage=%s err=%v", r.RunID, stage, err)
	return r
}
