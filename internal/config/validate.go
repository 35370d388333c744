// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package config

import (
	"fmt"

	"github.com/tomtom215/feedpilot/internal/validation"
)

// Validate checks struct-tag constraints first, then the cross-field rules
// that tags cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	validators := []func() error{
		c.validateForceAdvance,
		c.validateRetryDelays,
		c.validateThresholds,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateForceAdvance() error {
	if c.Engine.ForceAdvanceEnabled && c.Engine.ForceAdvanceAfter <= 0 {
		return fmt.Errorf("FORCE_ADVANCE_AFTER must be positive when FORCE_ADVANCE_ENABLED=true")
	}
	return nil
}

// validateRetryDelays requires strictly increasing delays; each entry is an
// offset from the moment of completion, not from the previous retry.
func (c *Config) validateRetryDelays() error {
	delays := c.Engine.AdvanceRetryDelays
	for i := 1; i < len(delays); i++ {
		if delays[i] <= delays[i-1] {
			return fmt.Errorf("ADVANCE_RETRY_DELAYS must be strictly increasing, got %v after %v", delays[i], delays[i-1])
		}
	}
	return nil
}

// validateThresholds only rejects configurations where a single score could
// trigger both auto-like and auto-dislike. Asymmetric thresholds are fine.
func (c *Config) validateThresholds() error {
	if c.Engine.DislikeThreshold >= c.Engine.LikeThreshold {
		return fmt.Errorf("DISLIKE_THRESHOLD (%v) must be below LIKE_THRESHOLD (%v)",
			c.Engine.DislikeThreshold, c.Engine.LikeThreshold)
	}
	return nil
}
