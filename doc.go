// Package spot implements SPOT (Streaming Peaks Over Threshold), an online
// anomaly detector for univariate real-valued time series based on extreme
// value theory.
//
// A Spot detector learns the extreme tail of a distribution from a finite
// training sample (Fit) and then classifies subsequent values as Normal,
// Excess, or Anomaly (Step) while continuously refitting its tail model.
// The tail is modeled with a Generalized Pareto Distribution fit via the
// Grimshaw maximum-likelihood method, with a method-of-moments fallback.
package spot
