// Package pulse defines the records that flow through the pulse-shape
// pipeline.
//
// A [Record] is one recorded waveform plus every value derived from it.
// Derived values are explicit optional slots: a [Feature] carries its own
// availability flag and a nil Fit means fitting was never attempted. Stages
// fill slots in order (condition, extract, score), and readers check
// availability through [Record.Scalar] rather than trusting zero values.
//
// A [Group] is an ordered, named collection of records for one physical
// source or class. Filtering only removes records; it never inserts.
//
// # Field names
//
// Persistence, filters and histograms address values by name:
//
//	integral, fit_cost, fit_amp1..fit_amp4, fit_tau1..fit_tau4, shape_indicator
//	raw, x, smoothed, trimmed, trimmed_x
//
// The first line are scalars, the second arrays.
package pulse
