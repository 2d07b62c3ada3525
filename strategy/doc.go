// Package strategy provides host weighting and selection strategies for
// managed balancers.
//
// Selection strategies pick one host from a weighted candidate set:
//   - RoundRobin: cycle through hosts regardless of weight (default)
//   - WeightedRandom: pick hosts with probability proportional to weight
//
// Weighting strategies compute the candidate weights:
//   - EqualWeight: every host weighs the same (default)
//   - LeastLoaded: weight inversely follows the host's latest load sample
package strategy
