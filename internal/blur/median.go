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

// MedianBlur replaces each sample with the median of its neighborhood.
// Square mode takes the full (2r+1)x(2r+1) window; the axis modes take
// a line, HV a cross.
func MedianBlur(f *frame.Frame, radius int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	return medianBlurWith(backend.Current(), backend.Active(), f, radius, mode, planes)
}

// MedianBlurPerPlane applies MedianBlur with a separate radius per plane.
func MedianBlurPerPlane(f *frame.Frame, radii []int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	caps, eng:=backend.Current(), backend.Active()
	return normalizeRadiusInt("median_blur", f, radii, planes,
		func(f *frame.Frame, radius int, group []int) (*frame.Frame, error) {
			return medianBlurWith(caps, eng, f, radius, mode, group)
		})
}

func medianBlurWith(caps backend.CapabilitySet, eng *backend.Engines, f *frame.Frame,
	radius int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	if radius<1 {
		return nil, fmt.Errorf("median_blur: radius %d out of range: %w", radius, vblur.ErrInvalidParameter)
	}
	mask, err:=normalizePlanes("median_blur", f, planes)
	if err!=nil {
		return nil, err
	}

	switch path:=backend.SelectMedian(backend.MedianRequest{Radius: radius, Mode: mode}, caps); path {
	case backend.PathMedian3x3:
		return native.Median3x3(f, mask), nil

	case backend.PathExprProgram:
		prog, err:=expr.MedianClip(radius, mode)
		if err!=nil {
			return nil, err
		}
		return eng.Expr.EvalExpr(prog, []*frame.Frame{f}, mask)

	default:
		return nil, fmt.Errorf("median_blur: radius %d %v mode needs an expression engine: %w",
			radius, mode, vblur.ErrMissingCapability)
	}
}
