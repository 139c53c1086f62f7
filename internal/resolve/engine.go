package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/reconciler/internal/cluster"
	"github.com/lehigh-university-libraries/reconciler/internal/isbn"
	"github.com/lehigh-university-libraries/reconciler/internal/merge"
	"github.com/lehigh-university-libraries/reconciler/internal/normalize"
	"github.com/lehigh-university-libraries/reconciler/internal/records"
	"github.com/lehigh-university-libraries/reconciler/internal/similarity"
)

// Engine orchestrates normalization, scoring, clustering, and merging
// over a batch of raw records. It holds no state across batches;
// clustering state is scoped to one resolution pass and discarded.
type Engine struct {
	cfg     Config
	scorer  *similarity.Scorer
	matcher *cluster.Matcher
	merger  *merge.Merger
}

// New builds an engine from an immutable configuration. The only fatal
// configuration error is a weight set with a non-positive total.
func New(cfg Config) (*Engine, error) {
	scorer, err := similarity.NewScorer(cfg.weights())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Engine{
		cfg:     cfg,
		scorer:  scorer,
		matcher: cluster.NewMatcher(scorer, cfg.threshold()),
		merger:  merge.NewMerger(scorer, cfg.SourceTrust),
	}, nil
}

// Threshold reports the effective cluster threshold.
func (e *Engine) Threshold() float64 {
	return e.matcher.Threshold()
}

// Result is the output of one resolution pass over a batch.
type Result struct {
	BatchID   string                    `json:"batch_id" yaml:"batch_id"`
	State     State                     `json:"state" yaml:"state"`
	Input     int                       `json:"input" yaml:"input"`
	Clusters  []records.Cluster         `json:"clusters" yaml:"clusters"`
	Canonical []records.CanonicalRecord `json:"canonical" yaml:"canonical"`
	Outcomes  []Outcome                 `json:"outcomes" yaml:"outcomes"`
}

// Resolve runs one pass: raw records in, canonical records plus outcome
// events out. An empty batch completes trivially with an empty result.
// Per-record and per-cluster failures are isolated and reported alongside
// successes; nothing short of a cancelled context aborts the batch.
func (e *Engine) Resolve(ctx context.Context, raws []records.RawRecord) (*Result, error) {
	result := &Result{
		BatchID: uuid.NewString(),
		State:   StateFetched,
		Input:   len(raws),
	}
	slog.Info("Starting resolution pass", "batch", result.BatchID, "records", len(raws))
	if len(raws) == 0 {
		result.State = StateReported
		return result, nil
	}

	// Normalize. Field-level failures degrade to unknown and surface as
	// warnings; a malformed ISBN additionally excludes the record from
	// family clustering.
	normalized := make([]records.NormalizedRecord, 0, len(raws))
	for i := range raws {
		if raws[i].ID == "" {
			raws[i].ID = uuid.NewString()
		}
		n, warnings := normalize.Record(raws[i])
		for _, w := range warnings {
			kind := OutcomeNormalizationWarning
			if isbnErr := asMalformedISBN(w); isbnErr {
				kind = OutcomeMalformedISBN
			}
			result.Outcomes = append(result.Outcomes, Outcome{
				Kind:     kind,
				RecordID: n.ID,
				Detail:   w.Error(),
			})
		}
		normalized = append(normalized, n)
	}
	result.State = StateNormalized
	slog.Debug("Batch normalized", "batch", result.BatchID)

	// Group by ISBN family. Families are self-contained, so they are
	// clustered and merged concurrently. Orphans form their own groups.
	groups := make(map[string][]records.NormalizedRecord)
	for _, n := range normalized {
		key := n.Family
		if key == "" {
			key = "orphan:" + n.ID
		}
		groups[key] = append(groups[key], n)
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.cfg.concurrency())
	resultsChan := make(chan familyResult, len(groups))

	for _, members := range groups {
		wg.Add(1)
		go func(members []records.NormalizedRecord) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release
			resultsChan <- e.resolveFamily(members)
		}(members)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for fr := range resultsChan {
		result.Clusters = append(result.Clusters, fr.clusters...)
		result.Canonical = append(result.Canonical, fr.canonical...)
		result.Outcomes = append(result.Outcomes, fr.outcomes...)
	}
	result.State = StateClustered
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(result.Clusters, func(i, j int) bool {
		return result.Clusters[i].Members[0] < result.Clusters[j].Members[0]
	})
	sort.Slice(result.Canonical, func(i, j int) bool {
		return result.Canonical[i].Members[0] < result.Canonical[j].Members[0]
	})
	result.State = StateMerged

	slog.Info("Resolution pass complete",
		"batch", result.BatchID,
		"clusters", len(result.Clusters),
		"canonical", len(result.Canonical),
		"outcomes", len(result.Outcomes))
	result.State = StateReported
	return result, nil
}

type familyResult struct {
	clusters  []records.Cluster
	canonical []records.CanonicalRecord
	outcomes  []Outcome
}

// resolveFamily clusters one self-contained group and merges the
// finalized clusters. Clustering completes before merging begins.
func (e *Engine) resolveFamily(members []records.NormalizedRecord) (fr familyResult) {
	byID := make(map[string]records.NormalizedRecord, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	fr.clusters = e.matcher.Cluster(members)
	for _, cl := range fr.clusters {
		clusterMembers := make([]records.NormalizedRecord, 0, len(cl.Members))
		for _, id := range cl.Members {
			clusterMembers = append(clusterMembers, byID[id])
		}

		canonical, err := e.merger.Merge(cl, clusterMembers)
		if err != nil {
			fr.outcomes = append(fr.outcomes, Outcome{
				Kind:   OutcomeMergeFailure,
				Family: cl.Family,
				Detail: err.Error(),
			})
			continue
		}
		fr.canonical = append(fr.canonical, canonical)

		kind := OutcomeResolved
		detail := ""
		if len(cl.Members) > 1 && cl.Confidence < e.matcher.Threshold() {
			kind = OutcomeAmbiguous
			detail = fmt.Sprintf("weakest link %.2f below threshold %.2f", cl.Confidence, e.matcher.Threshold())
		}
		fr.outcomes = append(fr.outcomes, Outcome{
			Kind:     kind,
			RecordID: canonical.ID,
			Family:   cl.Family,
			Detail:   detail,
		})
	}
	return fr
}

func asMalformedISBN(err error) bool {
	var target *isbn.MalformedISBNError
	return errors.As(err, &target)
}
