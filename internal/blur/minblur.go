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


package blur

import (
	"fmt"

	"github.com/mlnoga/vblur"
	"github.com/mlnoga/vblur/internal/backend"
	"github.com/mlnoga/vblur/internal/expr"
	"github.com/mlnoga/vblur/internal/frame"
	"github.com/mlnoga/vblur/internal/kernel"
	"github.com/mlnoga/vblur/internal/native"
)

// MinBlur combines a binomial blur and a median of the same radius: each
// output sample takes the candidate whose residual against the input is
// smaller, and falls back to the median when the two residuals disagree
// in sign. The effect is a blur that does not smear across edges.
func MinBlur(f *frame.Frame, radius int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	return minBlurWith(backend.Current(), backend.Active(), f, radius, mode, planes)
}

// MinBlurPerPlane applies MinBlur with a separate radius per plane.
func MinBlurPerPlane(f *frame.Frame, radii []int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	caps, eng:=backend.Current(), backend.Active()
	return normalizeRadiusInt("min_blur", f, radii, planes,
		func(f *frame.Frame, radius int, group []int) (*frame.Frame, error) {
			return minBlurWith(caps, eng, f, radius, mode, group)
		})
}

func minBlurWith(caps backend.CapabilitySet, eng *backend.Engines, f *frame.Frame,
	radius int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	if radius<1 {
		return nil, fmt.Errorf("min_blur: radius %d out of range: %w", radius, vblur.ErrInvalidParameter)
	}
	mask, err:=normalizePlanes("min_blur", f, planes)
	if err!=nil {
		return nil, err
	}
	if !caps.HasExprEngine {
		return nil, fmt.Errorf("min_blur: radius %d needs an expression engine: %w",
			radius, vblur.ErrMissingCapability)
	}

	k, err:=kernel.Binomial(radius)
	if err!=nil {
		return nil, err
	}
	blurred:=native.ConvolveFrame(f, k, mode, mask)

	med, err:=medianBlurWith(caps, eng, f, radius, mode, planes)
	if err!=nil {
		return nil, err
	}

	prog, err:=expr.MergeAgreement()
	if err!=nil {
		return nil, err
	}
	return eng.Expr.EvalExpr(prog, []*frame.Frame{f, blurred, med}, mask)
}
