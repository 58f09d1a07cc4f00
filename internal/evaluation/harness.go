// Package evaluation provides the harness that scores one instruction-set
// candidate against the full labeled dataset.
package evaluation

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/leadscout/internal/dataset"
	"github.com/jonathan/leadscout/internal/metrics"
	"github.com/jonathan/leadscout/internal/types"
)

// DefaultConcurrency caps the per-group scoring fan-out. The same cap is used
// for evaluating variants in parallel during optimization.
const DefaultConcurrency = 4

// Scorer is the batch scoring dependency. *scoring.Agent satisfies it.
type Scorer interface {
	RankLeads(ctx context.Context, instructionText, personaContext, company string, leads []types.Lead) ([]types.LeadRanking, error)
}

// Result holds the outcome of evaluating one candidate: its metrics and the
// raw per-lead predictions, which the optimizer needs for error sampling
// before the candidate is persisted.
type Result struct {
	Metrics  types.Metrics
	Rankings []types.LeadRanking
	Covered  int
	Missing  []string
}

// Harness evaluates instruction texts against a fixed dataset.
type Harness struct {
	scorer         Scorer
	ds             *dataset.Dataset
	personaContext string
	concurrency    int
}

// New creates an evaluation harness. concurrency <= 0 selects the default.
func New(scorer Scorer, ds *dataset.Dataset, personaContext string, concurrency int) *Harness {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Harness{
		scorer:         scorer,
		ds:             ds,
		personaContext: personaContext,
		concurrency:    concurrency,
	}
}

// Evaluate scores the instruction text over every company group with bounded
// concurrency, aligns predictions to ground truth, and computes metrics over
// the covered subset. Leads with no prediction are logged as coverage gaps,
// not errors; zero coverage is an error.
func (h *Harness) Evaluate(ctx context.Context, instructionText string) (*Result, error) {
	groups := h.ds.Groups()
	groupResults := make([][]types.LeadRanking, len(groups))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)

	for i, group := range groups {
		g.Go(func() error {
			leads := make([]types.Lead, len(group.Leads))
			for j, gt := range group.Leads {
				leads[j] = gt.Lead
			}
			rankings, err := h.scorer.RankLeads(gCtx, instructionText, h.personaContext, group.Company, leads)
			if err != nil {
				return fmt.Errorf("scoring group %s failed: %w", group.Company, err)
			}
			groupResults[i] = rankings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Flatten, first valid prediction per lead wins.
	predicted := make(map[string]types.LeadRanking)
	var flat []types.LeadRanking
	for _, rankings := range groupResults {
		for _, r := range rankings {
			if _, seen := predicted[r.LeadID]; seen {
				continue
			}
			predicted[r.LeadID] = r
			flat = append(flat, r)
		}
	}

	// Align against ground truth; collect coverage gaps.
	var actual, preds []float64
	var missing []string
	for _, lead := range h.ds.Leads() {
		r, ok := predicted[lead.ID]
		if !ok {
			missing = append(missing, lead.ID)
			continue
		}
		actual = append(actual, float64(lead.GroundTruthRank))
		preds = append(preds, r.PredictedRank)
	}
	if len(missing) > 0 {
		log.Printf("evaluation coverage gap: %d of %d leads have no prediction: %v",
			len(missing), h.ds.Size(), missing)
	}
	if len(actual) == 0 {
		return nil, fmt.Errorf("evaluation produced zero coverage: no lead received a prediction")
	}

	mae, rmse, spearman, kendall, err := metrics.Compute(actual, preds)
	if err != nil {
		return nil, fmt.Errorf("metric computation failed: %w", err)
	}

	return &Result{
		Metrics: types.Metrics{
			MAE:        mae,
			RMSE:       rmse,
			Spearman:   spearman,
			KendallTau: kendall,
		},
		Rankings: flat,
		Covered:  len(actual),
		Missing:  missing,
	}, nil
}

// BuildRecords converts a result into per-lead evaluation records for
// persistence. Only covered leads produce records.
func (h *Harness) BuildRecords(result *Result) []types.EvaluationRecord {
	records := make([]types.EvaluationRecord, 0, len(result.Rankings))
	for _, r := range result.Rankings {
		rank, ok := h.ds.Rank(r.LeadID)
		if !ok {
			continue
		}
		absErr := r.PredictedRank - float64(rank)
		if absErr < 0 {
			absErr = -absErr
		}
		records = append(records, types.EvaluationRecord{
			LeadID:          r.LeadID,
			PredictedRank:   r.PredictedRank,
			GroundTruthRank: rank,
			Justification:   r.Justification,
			AbsoluteError:   absErr,
			SquaredError:    absErr * absErr,
		})
	}
	return records
}
