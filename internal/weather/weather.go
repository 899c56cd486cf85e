// Package weather provides weather conditions, their movement and cost
// effects, and a spatial field of global and local conditions.
package weather

import (
	"fmt"
	"strings"
)

// Condition is the weather at one place and time.
type Condition struct {
	RainIntensity float64 `json:"rain_intensity" yaml:"rain_intensity"` // 0.0 to 1.0
	Visibility    float64 `json:"visibility" yaml:"visibility"`         // 0.0 to 1.0 (1.0 = perfect)
	WindSpeed     float64 `json:"wind_speed" yaml:"wind_speed"`         // m/s, >= 0
	Temperature   float64 `json:"temperature" yaml:"temperature"`       // Celsius
}

// Kind names a preset condition.
type Kind string

const (
	KindClear Kind = "clear"
	KindRain  Kind = "rain"
	KindSnow  Kind = "snow"
	KindFog   Kind = "fog"
	KindStorm Kind = "storm"
)

var presets = map[Kind]Condition{
	KindClear: {RainIntensity: 0.0, Visibility: 1.0, WindSpeed: 2.0, Temperature: 20.0},
	KindRain:  {RainIntensity: 0.6, Visibility: 0.7, WindSpeed: 5.0, Temperature: 15.0},
	KindSnow:  {RainIntensity: 0.4, Visibility: 0.5, WindSpeed: 3.0, Temperature: -2.0},
	KindFog:   {RainIntensity: 0.1, Visibility: 0.3, WindSpeed: 1.0, Temperature: 10.0},
	KindStorm: {RainIntensity: 0.9, Visibility: 0.2, WindSpeed: 15.0, Temperature: 18.0},
}

// Preset returns the preset condition for kind.
func Preset(kind Kind) (Condition, error) {
	c, ok := presets[Kind(strings.ToLower(string(kind)))]
	if !ok {
		return Condition{}, fmt.Errorf("unknown weather preset %q", kind)
	}
	return c, nil
}

// Movement multiplier constants.
const (
	rainSpeedLoss     = 0.3
	WindThreshold     = 10.0 // m/s
	windSpeedFactor   = 0.8
	freezingFactor    = 0.7 // ice and snow
	heatThreshold     = 35.0
	heatFactor        = 0.9
	MinMovementFactor = 0.2
)

// Traversal cost penalty constants.
const (
	rainCostWeight       = 2.0
	visibilityCostWeight = 3.0
	windCostWeight       = 0.5
)

// MovementMultiplier returns the fraction of nominal speed achievable
// under c, never below MinMovementFactor.
func (c Condition) MovementMultiplier() float64 {
	m := 1.0
	m *= 1.0 - c.RainIntensity*rainSpeedLoss
	m *= 0.5 + c.Visibility*0.5
	if c.WindSpeed > WindThreshold {
		m *= windSpeedFactor
	}
	if c.Temperature < 0 {
		m *= freezingFactor
	} else if c.Temperature > heatThreshold {
		m *= heatFactor
	}
	if m < MinMovementFactor {
		return MinMovementFactor
	}
	return m
}

// Penalty returns the additive traversal cost contributed by c.
// Inputs are clamped to their valid ranges so the result is never negative.
func (c Condition) Penalty() float64 {
	v := c.clamped()
	p := v.RainIntensity * rainCostWeight
	p += (1 - v.Visibility) * visibilityCostWeight
	if v.WindSpeed > WindThreshold {
		p += (v.WindSpeed - WindThreshold) * windCostWeight
	}
	return p
}

// Validate reports whether every field lies in its documented range.
func (c Condition) Validate() error {
	switch {
	case c.RainIntensity < 0 || c.RainIntensity > 1:
		return fmt.Errorf("rain intensity %v outside [0, 1]", c.RainIntensity)
	case c.Visibility < 0 || c.Visibility > 1:
		return fmt.Errorf("visibility %v outside [0, 1]", c.Visibility)
	case c.WindSpeed < 0:
		return fmt.Errorf("wind speed %v is negative", c.WindSpeed)
	}
	return nil
}

func (c Condition) clamped() Condition {
	c.RainIntensity = clamp(c.RainIntensity, 0, 1)
	c.Visibility = clamp(c.Visibility, 0, 1)
	if c.WindSpeed < 0 {
		c.WindSpeed = 0
	}
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
