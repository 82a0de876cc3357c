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

// SoftBlurReduce subtracts the part of a binomial blur that survives a
// second blurring of the residual. The residual around the neutral point
// is limited to where first and second pass agree in sign, which removes
// grain while keeping structure.
func SoftBlurReduce(f *frame.Frame, radius int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	return softBlurReduceWith(backend.Current(), backend.Active(), f, radius, mode, planes)
}

// SoftBlurReducePerPlane applies SoftBlurReduce with a separate radius per plane.
func SoftBlurReducePerPlane(f *frame.Frame, radii []int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	caps, eng:=backend.Current(), backend.Active()
	return normalizeRadiusInt("sbr", f, radii, planes,
		func(f *frame.Frame, radius int, group []int) (*frame.Frame, error) {
			return softBlurReduceWith(caps, eng, f, radius, mode, group)
		})
}

func softBlurReduceWith(caps backend.CapabilitySet, eng *backend.Engines, f *frame.Frame,
	radius int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	if radius<1 {
		return nil, fmt.Errorf("sbr: radius %d out of range: %w", radius, vblur.ErrInvalidParameter)
	}
	mask, err:=normalizePlanes("sbr", f, planes)
	if err!=nil {
		return nil, err
	}
	if !caps.HasExprEngine {
		return nil, fmt.Errorf("sbr: radius %d needs an expression engine: %w",
			radius, vblur.ErrMissingCapability)
	}

	k, err:=kernel.Binomial(radius)
	if err!=nil {
		return nil, err
	}
	blurred:=native.ConvolveFrame(f, k, mode, mask)
	diff:=frame.MakeDiff(f, blurred, mask)
	reblurred:=native.ConvolveFrame(diff, k, mode, mask)

	prog, err:=expr.LimitResidual(float64(f.Format.Neutral()))
	if err!=nil {
		return nil, err
	}
	limited, err:=eng.Expr.EvalExpr(prog, []*frame.Frame{diff, reblurred}, mask)
	if err!=nil {
		return nil, err
	}
	return frame.MakeDiff(f, limited, mask), nil
}
