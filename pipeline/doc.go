// Package pipeline drives a batch run: ingest and process pulses, persist
// their features, reload, filter, build characteristic waveforms, score
// shape indicators and report histograms.
//
// Stages run one after another and each is toggled in [Steps], so a run
// can resume from stored features instead of raw tables. Pulse processing
// fans out to a worker pool; everything else works on whole groups.
//
// # Usage
//
//	cfg, err := pipeline.LoadConfig("psd.json")
//	r, err := pipeline.NewRunner(ctx, cfg, logger, histogram.TextPlotter{W: os.Stdout})
//	defer r.Close()
//	report, err := r.Run(ctx)
package pipeline
