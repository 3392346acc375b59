package tts

import (
	"fmt"
	"math"
)

// Speech rate bounds. Rates move in steps of RateStep.
const (
	MinRate     = 0.5
	MaxRate     = 2.0
	DefaultRate = 1.0
	RateStep    = 0.1
)

// ClampRate forces rate into [MinRate, MaxRate], rounded to a step. NaN and
// zero mean the default rate.
func ClampRate(rate float64) float64 {
	if math.IsNaN(rate) || rate == 0 {
		return DefaultRate
	}
	rate = math.Min(math.Max(rate, MinRate), MaxRate)
	return math.Round(rate*10) / 10
}

// StepRate moves rate by steps increments of RateStep.
func StepRate(rate float64, steps int) float64 {
	return ClampRate(ClampRate(rate) + float64(steps)*RateStep)
}

// FormatRate renders a rate as "1.2x".
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.1fx", ClampRate(rate))
}

// LengthScale converts a rate to Piper's --length_scale, which stretches
// phoneme duration. Faster speech is a shorter scale.
func LengthScale(rate float64) float64 {
	return 1 / ClampRate(rate)
}
