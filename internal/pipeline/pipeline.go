package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"cascadeforecast/internal/cascade"
	"cascadeforecast/internal/features"
	"cascadeforecast/internal/label"
	"cascadeforecast/internal/logging"
	"cascadeforecast/internal/metrics"
	"cascadeforecast/internal/prefix"
)

// Sample is what the label constructor and classifier consume for one (cascade, k).
type Sample struct {
	Features          features.FeatureVector
	K                 int
	FinalRetweetCount int
	Label             int
	// Sufficient is false when the cascade had fewer than K events; such
	// samples must not be used for training.
	Sufficient bool
}

// Result is the outcome of one input record. Cascade is nil when the record
// failed; Err then says why.
type Result struct {
	Record    cascade.Record
	Cascade   *cascade.Cascade
	Samples   []Sample
	Anomalies []cascade.Anomaly
	Err       error
}

type Options struct {
	Ks               []int
	SizeSource       label.SizeSource
	Workers          int
	ProgressInterval time.Duration
}

// Report summarizes a batch.
type Report struct {
	Cascades     int
	Failed       int
	Samples      int
	Insufficient int
	Anomalies    cascade.AnomalyCounts
}

// ProcessRecord builds one cascade and derives a sample per k. It never
// fails past the record: errors land in Result.Err.
func ProcessRecord(r cascade.Record, ks []int, src label.SizeSource) Result {
	res := Result{Record: r}
	c, anomalies, err := cascade.Build(r)
	res.Anomalies = anomalies
	if err != nil {
		res.Err = err
		return res
	}
	res.Cascade = c
	final := label.FinalSize(c, src)
	for _, k := range ks {
		p, ok := prefix.Prefix(c, k)
		if !ok {
			res.Anomalies = append(res.Anomalies, cascade.Anomaly{
				Kind:      cascade.InsufficientEvents,
				MessageID: r.MessageID,
				Detail:    fmt.Sprintf("%d events, k=%d", c.Len(), k),
			})
		}
		res.Samples = append(res.Samples, Sample{
			Features:          features.Extract(p),
			K:                 k,
			FinalRetweetCount: final,
			Label:             label.Doubling(final, k),
			Sufficient:        ok,
		})
	}
	return res
}

// Run processes records on a bounded worker pool. Results keep input order.
// Only context cancellation makes Run return an error.
func Run(ctx context.Context, records []cascade.Record, opts Options) ([]Result, Report, error) {
	start := time.Now()
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	progress := rate.Sometimes{Interval: opts.ProgressInterval}
	if opts.ProgressInterval <= 0 {
		progress = rate.Sometimes{Every: 1000}
	}

	results := make([]Result, len(records))
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		if gctx.Err() != nil {
			break
		}
		i := i // per-iteration copy (go directive is 1.21)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ProcessRecord(records[i], opts.Ks, opts.SizeSource)
			n := done.Add(1)
			progress.Do(func() {
				logging.Info("pipeline_progress", map[string]any{"done": n, "total": len(records)})
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Report{}, err
	}

	rep := Summarize(results)
	observe(results, rep)
	metrics.ObserveBatchDuration(start)
	logging.Info("pipeline_done", map[string]any{
		"cascades": rep.Cascades, "failed": rep.Failed, "samples": rep.Samples,
		"insufficient": rep.Insufficient, "anomalies": rep.Anomalies.Total(),
	})
	return results, rep, nil
}

// Summarize folds per-record results into a report.
func Summarize(results []Result) Report {
	rep := Report{Anomalies: cascade.AnomalyCounts{}}
	for _, r := range results {
		rep.Cascades++
		if r.Err != nil {
			rep.Failed++
		}
		rep.Anomalies.Add(r.Anomalies)
		for _, s := range r.Samples {
			rep.Samples++
			if !s.Sufficient {
				rep.Insufficient++
			}
		}
	}
	return rep
}

func observe(results []Result, rep Report) {
	for _, r := range results {
		if r.Err != nil {
			metrics.Cascades.WithLabelValues("failed").Inc()
			logging.Warn("cascade_failed", map[string]any{"message_id": r.Record.MessageID, "error": r.Err.Error()})
			continue
		}
		metrics.Cascades.WithLabelValues("ok").Inc()
		metrics.CascadeEvents.Observe(float64(r.Cascade.Len()))
		for _, s := range r.Samples {
			metrics.IncSample(s.K, s.Sufficient)
		}
	}
	for kind, n := range rep.Anomalies {
		metrics.IncAnomaly(string(kind), n)
	}
}
