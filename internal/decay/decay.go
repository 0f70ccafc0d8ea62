// Package decay holds the scoring math shared by the estimator, the
// scheduler, and the memory index: exponential half-life decay, recency
// weighting, dispersion, and Bayesian blending. Everything here is a pure
// function of its arguments.
package decay

import (
	"math"
	"time"
)

// ConfidenceCap bounds every confidence score. Estimates never reach
// certainty; there is always irreducible noise in how long things take.
const ConfidenceCap = 0.95

// Exponential returns the half-life decay factor 0.5^(age/halfLife).
// A non-positive halfLife disables decay (returns 1), a negative age is
// treated as zero.
func Exponential(age, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 1.0
	}
	if age <= 0 {
		return 1.0
	}
	return math.Pow(0.5, float64(age)/float64(halfLife))
}

// RecencyWeight returns exp(-age/window), the weight given to a historical
// observation when blending accuracy scores. A non-positive window weights
// everything equally.
func RecencyWeight(age, window time.Duration) float64 {
	if window <= 0 {
		return 1.0
	}
	if age <= 0 {
		return 1.0
	}
	return math.Exp(-float64(age) / float64(window))
}

// CoefficientOfVariation returns stddev/mean for the given samples.
// Fewer than two samples, or a zero mean, yields 0 — callers decide what
// sentinel to substitute for "not enough data".
func CoefficientOfVariation(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))
	if mean == 0 {
		return 0
	}
	var sq float64
	for _, s := range samples {
		d := s - mean
		sq += d * d
	}
	return math.Sqrt(sq/float64(len(samples))) / math.Abs(mean)
}

// BayesianBlend folds one observation into a prior mean at the given
// learning rate, weighting the prior by its confidence:
//
//	mean = (priorMean*priorConf*(1-rate) + observed*rate) / (priorConf*(1-rate) + rate)
//	conf = min(ConfidenceCap, priorConf + rate*0.1)
//
// The returned confidence grows with every observation but never reaches
// ConfidenceCap exactly from below it in a single step.
func BayesianBlend(priorMean, priorConf, observed, rate float64) (mean, conf float64) {
	rate = Clamp01(rate)
	priorConf = Clamp01(priorConf)
	denom := priorConf*(1-rate) + rate
	if denom == 0 {
		return observed, math.Min(ConfidenceCap, rate*0.1)
	}
	mean = (priorMean*priorConf*(1-rate) + observed*rate) / denom
	conf = math.Min(ConfidenceCap, priorConf+rate*0.1)
	return mean, conf
}

// Clamp01 clamps x to [0, 1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
