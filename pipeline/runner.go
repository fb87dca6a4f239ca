package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-psd/characteristic"
	"github.com/cwbudde/algo-psd/discriminate"
	"github.com/cwbudde/algo-psd/filter"
	"github.com/cwbudde/algo-psd/histogram"
	"github.com/cwbudde/algo-psd/ingest"
	"github.com/cwbudde/algo-psd/pulse"
)

// separationSigmas is the interval half-width used when reporting whether
// the two classes' SI distributions are separated.
const separationSigmas = 2

// Runner executes the configured stages in order.
type Runner struct {
	cfg     Config
	log     *slog.Logger
	run     string
	backend Backend
	plotter histogram.Plotter
}

// Report collects what a run produced.
type Report struct {
	Run        string
	Groups     []*pulse.Group
	Removed    map[string]int // records dropped by the filter stage
	Weighting  []float64      // nil unless discrimination ran
	Histograms []*histogram.Histogram
}

// Group returns the named group or nil.
func (rep *Report) Group(name string) *pulse.Group {
	for _, g := range rep.Groups {
		if g.Name == name {
			return g
		}
	}

	return nil
}

// Histogram returns the histogram of field in group, or nil.
func (rep *Report) Histogram(group, field string) *histogram.Histogram {
	for _, h := range rep.Histograms {
		if h.Group == group && h.Field == field {
			return h
		}
	}

	return nil
}

// NewRunner validates cfg and opens the storage backend. A nil plotter
// disables histogram rendering; a nil log discards messages.
func NewRunner(ctx context.Context, cfg Config, log *slog.Logger, plotter histogram.Plotter) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	run := uuid.NewString()
	log = logger(log).With("run", run)

	backend, err := openBackend(ctx, cfg, log.With("module", "store"))
	if err != nil {
		return nil, err
	}

	return &Runner{cfg: cfg, log: log, run: run, backend: backend, plotter: plotter}, nil
}

// RunID identifies this runner in log lines.
func (r *Runner) RunID() string { return r.run }

// Close releases the storage backend.
func (r *Runner) Close() error { return r.backend.Close() }

// Run executes every enabled stage. Only I/O and configuration problems
// abort; degenerate groups are logged and skipped.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.cfg.Verbosity > 0 {
		printConfiguration(r.cfg, r.log)
	}

	rep := &Report{Run: r.run, Removed: make(map[string]int)}
	steps := r.cfg.Steps

	if steps.Process {
		for _, gc := range r.cfg.Groups {
			g, err := r.processGroup(ctx, gc)
			if err != nil {
				return rep, err
			}
			rep.Groups = append(rep.Groups, g)
		}
	}

	if steps.Load {
		groups, err := r.load(ctx)
		if err != nil {
			return rep, err
		}
		rep.Groups = groups
	}

	if steps.Filter {
		if err := r.filter(rep); err != nil {
			return rep, err
		}
	}

	if steps.Characteristic || steps.Discriminate {
		if err := r.characteristics(rep); err != nil {
			return rep, err
		}
	}

	if steps.Discriminate {
		if err := r.discriminate(ctx, rep); err != nil {
			return rep, err
		}
	}

	if steps.Histogram {
		if err := r.histograms(rep); err != nil {
			return rep, err
		}
	}

	return rep, nil
}

func (r *Runner) processGroup(ctx context.Context, gc GroupConfig) (*pulse.Group, error) {
	log := r.log.With("module", "ingest")
	topts, iopts := r.cfg.ingestOptions(log)

	sources, err := ingest.ReadDir(gc.Dir, gc.Prefix, gc.Suffix, topts)
	if err != nil {
		return nil, err
	}

	g := pulse.NewGroup(gc.Name)
	for _, src := range sources {
		g.Records = append(g.Records, ingest.Records(src, iopts)...)
	}

	log.Info(fmt.Sprintf("Loaded %d pulses from %d files in %s", g.Len(), len(sources), gc.Dir), "group", gc.Name)
	if g.Len() == 0 {
		return g, nil
	}

	if err := r.Process(ctx, g); err != nil {
		return nil, err
	}

	if err := r.backend.Save(ctx, g, r.cfg.fieldsToSave()); err != nil {
		return nil, fmt.Errorf("save %s: %w", g.Name, err)
	}

	return g, nil
}

func (r *Runner) load(ctx context.Context) ([]*pulse.Group, error) {
	log := r.log.With("module", "load")

	groups := make([]*pulse.Group, 0, len(r.cfg.Groups))
	for _, gc := range r.cfg.Groups {
		g := pulse.NewGroup(gc.Name)
		if err := r.backend.Load(ctx, g, r.cfg.fieldsToSave()); err != nil {
			return nil, fmt.Errorf("load %s: %w", gc.Name, err)
		}

		// Shape indicators from an earlier run are optional unless a
		// filter needs them.
		if r.cfg.reloadsShapeIndicator() {
			if err := r.backend.Load(ctx, g, []string{pulse.FieldShapeIndicator}); err != nil {
				if r.cfg.Steps.Filter && slices.Contains(r.cfg.filterFields(), pulse.FieldShapeIndicator) {
					return nil, fmt.Errorf("load %s: %w", gc.Name, err)
				}
				log.Debug(fmt.Sprintf("no stored shape indicators: %v", err), "group", g.Name)
			}
		}

		log.Info(fmt.Sprintf("Reloaded %d pulses", g.Len()), "group", g.Name)
		groups = append(groups, g)
	}

	return groups, nil
}

func (r *Runner) filter(rep *Report) error {
	log := r.log.With("module", "filter")

	for _, g := range rep.Groups {
		before := g.Len()
		removed, err := filter.Apply(g, r.cfg.OutlierThresholds, r.cfg.RangeFilters[g.Name])
		if err != nil {
			return fmt.Errorf("filter %s: %w", g.Name, err)
		}

		rep.Removed[g.Name] = removed
		log.Info(fmt.Sprintf("Removed %d of %d pulses", removed, before), "group", g.Name)
	}

	return nil
}

func (r *Runner) characteristics(rep *Report) error {
	log := r.log.With("module", "characteristic")
	opts := r.cfg.characteristicOptions()

	for _, g := range rep.Groups {
		c, err := characteristic.Build(g, opts)
		if errors.Is(err, characteristic.ErrEmptyGroup) {
			log.Warn("no usable pulses for a characteristic waveform", "group", g.Name)
			continue
		}
		if err != nil {
			return fmt.Errorf("characteristic %s: %w", g.Name, err)
		}

		msg := fmt.Sprintf("Characteristic waveform of %d samples", len(c.Waveform))
		if c.Fit.OK() {
			msg += fmt.Sprintf(", tau1 = %.4g", c.Fit.Terms[0].Tau)
		}
		log.Info(msg, "group", g.Name)
	}

	return nil
}

func (r *Runner) discriminate(ctx context.Context, rep *Report) error {
	log := r.log.With("module", "discriminate")

	a, b := rep.Group(r.cfg.ClassA), rep.Group(r.cfg.ClassB)
	if a == nil || b == nil || a.Characteristic == nil || b.Characteristic == nil {
		log.Warn(fmt.Sprintf("skipped: no characteristic for %s or %s", r.cfg.ClassA, r.cfg.ClassB))
		return nil
	}

	p, err := discriminate.Weighting(a.Characteristic, b.Characteristic, r.cfg.discriminateOptions())
	if err != nil {
		log.Warn(fmt.Sprintf("skipped: %v", err))
		return nil
	}
	rep.Weighting = p

	scored, missing := discriminate.Score(rep.Groups, p)
	log.Info(fmt.Sprintf("Shape indicator computed for %d pulses, %d unavailable", scored, missing))

	for _, g := range rep.Groups {
		if err := r.backend.Save(ctx, g, []string{pulse.FieldShapeIndicator}); err != nil {
			return fmt.Errorf("save %s: %w", g.Name, err)
		}
	}

	return nil
}

func (r *Runner) histograms(rep *Report) error {
	log := r.log.With("module", "histogram")

	for _, g := range rep.Groups {
		hs, err := histogram.FromGroup(g, r.cfg.histogramFields(), r.cfg.HistogramBins)
		if err != nil {
			return fmt.Errorf("histogram %s: %w", g.Name, err)
		}

		for _, h := range hs {
			if r.plotter != nil {
				if err := r.plotter.Plot(h); err != nil {
					return err
				}
			}
		}
		rep.Histograms = append(rep.Histograms, hs...)
	}

	ha := rep.Histogram(r.cfg.ClassA, pulse.FieldShapeIndicator)
	hb := rep.Histogram(r.cfg.ClassB, pulse.FieldShapeIndicator)
	if ha != nil && hb != nil && ha.Summary.N > 0 && hb.Summary.N > 0 {
		log.Info(fmt.Sprintf("SI %s = %.4g ± %.2g, %s = %.4g ± %.2g, separated at %d sigma: %t",
			r.cfg.ClassA, ha.Summary.Mean, ha.Summary.StdDev,
			r.cfg.ClassB, hb.Summary.Mean, hb.Summary.StdDev,
			separationSigmas, histogram.Separated(ha.Summary, hb.Summary, separationSigmas)))
	}

	return nil
}
