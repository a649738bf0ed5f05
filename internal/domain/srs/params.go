package srs

import (
	"github.com/phrazzld/maika/internal/domain"
)

// Params defines all configurable parameters for the scheduling algorithm
type Params struct {
	// Floor applied to every computed ease
	MinEase float64

	// Ease adjustment per review result
	EaseAdjustment map[domain.ReviewResult]float64

	// Fixed intervals for the first two successful reviews
	FirstInterval  int
	SecondInterval int

	// A completed review is never due sooner than this many days
	MinDueDays int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	MinEase float64

	AgainEaseAdjustment float64
	GoodEaseAdjustment  float64
	EasyEaseAdjustment  float64

	FirstInterval  int
	SecondInterval int
	MinDueDays     int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEase: domain.MinEase,

		EaseAdjustment: map[domain.ReviewResult]float64{
			domain.ReviewResultAgain: -0.2,
			domain.ReviewResultGood:  0.0,
			domain.ReviewResultEasy:  0.1,
		},

		FirstInterval:  1,
		SecondInterval: 3,
		MinDueDays:     1,
	}
}

// NewParams creates a Params instance from the defaults with any non-zero
// fields of cfg applied on top.
func NewParams(cfg ParamsConfig) *Params {
	params := NewDefaultParams()

	if cfg.MinEase > 0 {
		params.MinEase = cfg.MinEase
	}
	if cfg.AgainEaseAdjustment != 0 {
		params.EaseAdjustment[domain.ReviewResultAgain] = cfg.AgainEaseAdjustment
	}
	if cfg.GoodEaseAdjustment != 0 {
		params.EaseAdjustment[domain.ReviewResultGood] = cfg.GoodEaseAdjustment
	}
	if cfg.EasyEaseAdjustment != 0 {
		params.EaseAdjustment[domain.ReviewResultEasy] = cfg.EasyEaseAdjustment
	}
	if cfg.FirstInterval > 0 {
		params.FirstInterval = cfg.FirstInterval
	}
	if cfg.SecondInterval > 0 {
		params.SecondInterval = cfg.SecondInterval
	}
	if cfg.MinDueDays > 0 {
		params.MinDueDays = cfg.MinDueDays
	}

	return params
}
