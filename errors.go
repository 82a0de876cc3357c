// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


// Package vblur provides spatial and temporal smoothing operators for
// sequences of image frames, together with the kernel synthesis, per-pixel
// expression compilation and run-time backend selection that turn an
// abstract blur request into an execution plan.
//
// The operator set lives in internal/blur; this root package holds the
// error taxonomy shared by all components.
package vblur

import "errors"

// Sentinel errors returned by blur operations. Every returned error wraps
// one of these and names the offending operator and value.
var (
	// ErrInvalidParameter flags an out-of-range radius, sigma, tap count
	// or threshold. Raised at the operator boundary before any backend
	// selection or buffer allocation takes place.
	ErrInvalidParameter = errors.New("vblur: invalid parameter")

	// ErrMissingCapability means no viable backend exists for the
	// requested parameters, e.g. a Gaussian tap count too large for
	// direct convolution with neither an expression engine nor a
	// scaling engine available.
	ErrMissingCapability = errors.New("vblur: no capable backend")

	// ErrFormatMismatch means a reference frame is incompatible with the
	// main frame where an exact match is required.
	ErrFormatMismatch = errors.New("vblur: frame format mismatch")

	// ErrUnsupportedMode means a convolution mode combination is not
	// implemented, e.g. square mode where only separable passes exist.
	ErrUnsupportedMode = errors.New("vblur: unsupported mode")
)
