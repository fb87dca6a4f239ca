// Package conv provides the linear convolution used to smooth pulses.
//
// Two strategies are available:
//
//   - Direct: O(N*M) time-domain convolution, vectorised with algo-vecmath
//   - OverlapAdd: FFT block convolution built on algo-fft
//
// # Usage
//
//	kernel := conv.Boxcar(5)
//	smoothed, err := conv.ConvolveMode(samples, kernel, conv.ModeSame)
//
// [Convolve] picks the strategy from the kernel length: direct up to 64
// taps, overlap-add beyond. Detector pulses are usually smoothed with a
// handful of taps, so the FFT path only matters for long windows.
//
// # Modes
//
// [ModeSame] returns len(a) samples centred on the kernel, the slice
// full[(len(b)-1)/2 : (len(b)-1)/2+len(a)]. The output length always
// equals the signal length, also when the kernel is the longer input, so a
// smoothed pulse stays aligned with its time axis.
package conv
