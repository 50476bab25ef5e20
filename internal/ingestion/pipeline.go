package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Fetcher is the contract every channel adapter implements: pull the channel's
// raw source-native records. A fetch failure fails that channel's run; the
// pipeline moves on to the next channel.
type Fetcher interface {
	Name() string
	Type() string // models.ChannelTypeAPI or models.ChannelTypeCrawl
	BaseURL() string
	Fetch(ctx context.Context) ([]SourceRecord, error)
}

// Enricher is an optional best-effort step applied to each raw record before
// normalization (e.g. content translation). Implementations must return a
// usable record even when enrichment fails.
type Enricher interface {
	Enrich(ctx context.Context, rec SourceRecord) SourceRecord
}

// ChannelRun bundles one channel's collaborators for an ingestion pass.
type ChannelRun struct {
	Fetcher    Fetcher
	Normalizer Normalizer
	Enricher   Enricher // optional
}

// ChannelResult is one channel's outcome in a pipeline run.
type ChannelResult struct {
	Channel string  `json:"channel"`
	Summary Summary `json:"summary"`
	Err     error   `json:"-"`
}

// Pipeline executes fetch → normalize → upsert → watermark for each channel
// in sequence. A failing channel never stops its siblings.
type Pipeline struct {
	registry *Registry
	engine   *Engine
}

// NewPipeline creates a pipeline over db.
func NewPipeline(db *gorm.DB) *Pipeline {
	return &Pipeline{
		registry: NewRegistry(db),
		engine:   NewEngine(NewGormStore(db)),
	}
}

// Run executes every channel run in order and returns the per-channel
// results. It always completes; individual channel failures are logged and
// reflected in the results only.
func (p *Pipeline) Run(ctx context.Context, runs []ChannelRun) []ChannelResult {
	logrus.WithField("channels", len(runs)).Info("Starting ingestion pipeline")

	results := make([]ChannelResult, 0, len(runs))
	for _, run := range runs {
		name := run.Fetcher.Name()
		summary, err := p.RunChannel(ctx, run)
		if err != nil {
			logrus.WithField("channel", name).WithError(err).Error("Channel ingestion failed")
		} else {
			logrus.WithFields(logrus.Fields{
				"channel":    name,
				"fetched":    summary.Fetched,
				"normalized": summary.Normalized,
				"applied":    summary.Applied(),
			}).Info("Channel ingestion completed")
		}
		results = append(results, ChannelResult{Channel: name, Summary: summary, Err: err})
	}

	logrus.Info("Ingestion pipeline finished")
	return results
}

// RunChannel executes a single channel's ingestion pass. The returned error
// is channel-fatal (fetch failure or unresolved channel identity); per-record
// problems are absorbed into the summary.
func (p *Pipeline) RunChannel(ctx context.Context, run ChannelRun) (Summary, error) {
	name := run.Fetcher.Name()
	now := time.Now()

	raw, err := run.Fetcher.Fetch(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch failed for channel %q: %w", name, err)
	}

	// No record can be attributed to an unknown channel, so a registry
	// failure aborts before any upsert attempt.
	channelID, err := p.registry.GetOrCreate(name, run.Fetcher.Type(), run.Fetcher.BaseURL())
	if err != nil {
		return Summary{}, fmt.Errorf("channel identity unresolved for %q: %w", name, err)
	}

	records := make([]*Record, 0, len(raw))
	for _, rec := range raw {
		if run.Enricher != nil {
			rec = run.Enricher.Enrich(ctx, rec)
		}
		if normalized := run.Normalizer.Normalize(rec, channelID, now); normalized != nil {
			records = append(records, normalized)
		}
	}

	summary := p.engine.UpsertBatch(name, records)
	summary.Fetched = len(raw)
	summary.Normalized = len(records)

	// The watermark advances on every completed pass, zero-change runs
	// included, so "checked recently" stays distinguishable from "stale".
	if err := p.registry.MarkIngested(channelID); err != nil {
		return summary, fmt.Errorf("failed to advance watermark for %q: %w", name, err)
	}

	return summary, nil
}
