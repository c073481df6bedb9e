package rng

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged damage rolls.
// All rolls are logged at debug level with bounds and result.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Between returns a uniform int in [min, max] inclusive and logs the roll.
//
// Postcondition: min <= result <= max (for max > min; otherwise min).
func (r *Roller) Between(min, max int) int {
	result := Between(r.src, min, max)
	r.logger.Debug("damage roll",
		zap.Int("min", min),
		zap.Int("max", max),
		zap.Int("result", result),
	)
	return result
}

// Source exposes the underlying randomness source.
func (r *Roller) Source() Source {
	return r.src
}
