// Package robust provides median-based dispersion statistics.
//
// The median absolute deviation (MAD) is the median of |x_i - median(x)|.
// It is resistant to the extreme values that make mean/standard-deviation
// tests unreliable on detector data, and is the basis of both per-sample
// outlier replacement (package condition) and per-record outlier rejection
// (package filter).
//
// # Usage
//
//	med, mad := robust.MAD(values)
//	flags := robust.Outliers(values, 5)
//	for i, bad := range flags {
//		if bad {
//			values[i] = med
//		}
//	}
//
// A zero MAD flags nothing: when more than half the samples are identical
// no sample can be called an outlier with confidence.
package robust
