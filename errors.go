/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package frostload

import (
	"github.com/pkg/errors"
)

var (
	errIterationTimedOut = "iteration timeout"
	errUnknownScenario   = "unknown scenario: %s"

	// ErrSetupFailed aborts the run before any iteration
	ErrSetupFailed = errors.New("scenario setup failed")
	// ErrInvalidConfig runner config has problems
	ErrInvalidConfig = errors.New("invalid runner config")
)
