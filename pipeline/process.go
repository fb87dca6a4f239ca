package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cwbudde/algo-psd/condition"
	"github.com/cwbudde/algo-psd/feature"
	"github.com/cwbudde/algo-psd/pulse"
)

type job struct {
	index  int
	record *pulse.Record
}

type outcome struct {
	index int
	err   error
}

// worker conditions and measures records until jobs is closed. A panic in
// one record is reported as that record's error and the worker keeps going.
func worker(id int, jobs <-chan job, results chan<- outcome, copts condition.Options, fopts feature.Options) {
	for j := range jobs {
		results <- processOne(id, j, copts, fopts)
	}
}

func processOne(id int, j job, copts condition.Options, fopts feature.Options) (out outcome) {
	out.index = j.index

	defer func() {
		if r := recover(); r != nil {
			out.err = fmt.Errorf("worker %d recovered from panic on %s: %v", id, j.record.ID, r)
		}
	}()

	if err := condition.Apply(j.record, copts); err != nil {
		out.err = err
		return out
	}

	if err := feature.Apply(j.record, fopts); err != nil {
		out.err = fmt.Errorf("features %s: %w", j.record.ID, err)
	}

	return out
}

// Process runs conditioning and feature extraction over every record of g
// on the configured worker pool. Records that fail are logged and removed;
// the group ends up ordered by ID.
func (r *Runner) Process(ctx context.Context, g *pulse.Group) error {
	total := len(g.Records)
	if total == 0 {
		return nil
	}

	log := r.log.With("module", "process")
	copts, fopts := r.cfg.conditionOptions(), r.cfg.featureOptions()

	jobs := make(chan job, r.cfg.Workers)
	results := make(chan outcome, total)

	var wg sync.WaitGroup
	for w := 1; w <= r.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(w, jobs, results, copts, fopts)
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for i, rec := range g.Records {
			select {
			case jobs <- job{index: i, record: rec}:
			case <-ctx.Done():
				return
			}
		}
	}()

	failed := make(map[int]bool)
	stride := max(total/200, 1)

	for done := 0; done < total; done++ {
		var res outcome
		select {
		case res = <-results:
		case <-ctx.Done():
			// Records in flight are still owned by workers until they exit.
			for range results {
			}
			return ctx.Err()
		}

		if res.err != nil {
			failed[res.index] = true
			log.Warn(fmt.Sprintf("pulse dropped: %v", res.err), "group", g.Name)
		}

		if done%stride == 0 {
			log.Info(fmt.Sprintf("Pulse processing is %.2f %% complete.", float64(done)*100/float64(total)), "group", g.Name)
		}
	}

	if len(failed) > 0 {
		kept := g.Records[:0]
		for i, rec := range g.Records {
			if !failed[i] {
				kept = append(kept, rec)
			}
		}
		g.Records = kept
	}

	g.SortByID()
	log.Debug(fmt.Sprintf("%d pulses processed, %d dropped", total, len(failed)), "group", g.Name)

	return nil
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}

	return l
}
