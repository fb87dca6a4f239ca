// Package discriminate separates two pulse classes by shape.
//
// From the characteristic waveforms A and B of two classes it derives the
// weighting function
//
//	P(t) = (nA(t) - nB(t)) / (nA(t) + nB(t))
//
// where nA and nB are the waveforms normalised by their own extremum, and
// scores each pulse s with the shape indicator
//
//	SI = Σ s(t)·P(t) / Σ s(t)
//
// over the overlap of s and P. A pulse shaped exactly like class A scores
// close to +1 where the classes do not overlap, one shaped like class B
// close to -1.
//
// # Usage
//
//	p, err := discriminate.Weighting(alpha.Characteristic, gamma.Characteristic, discriminate.DefaultOptions())
//	scored, missing := discriminate.Score([]*pulse.Group{alpha, gamma}, p)
package discriminate
