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

// BoxBlur applies passes iterations of a box filter of the given radius
// along the axes selected by mode. A radius of zero, or zero passes,
// returns the input unchanged. Square mode is not a box filter and is
// rejected.
func BoxBlur(f *frame.Frame, radius, passes int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	return boxBlurWith(backend.Current(), backend.Active(), f, radius, passes, mode, planes)
}

// BoxBlurPerPlane applies BoxBlur with a separate radius per plane.
func BoxBlurPerPlane(f *frame.Frame, radii []int, passes int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	caps, eng:=backend.Current(), backend.Active()
	return normalizeRadiusInt("box_blur", f, radii, planes,
		func(f *frame.Frame, radius int, group []int) (*frame.Frame, error) {
			return boxBlurWith(caps, eng, f, radius, passes, mode, group)
		})
}

func boxBlurWith(caps backend.CapabilitySet, eng *backend.Engines, f *frame.Frame,
	radius, passes int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	if radius<0 {
		return nil, fmt.Errorf("box_blur: radius %d out of range: %w", radius, vblur.ErrInvalidParameter)
	}
	if passes<0 {
		return nil, fmt.Errorf("box_blur: passes %d out of range: %w", passes, vblur.ErrInvalidParameter)
	}
	if mode==kernel.Square {
		return nil, fmt.Errorf("box_blur: %v mode: %w", mode, vblur.ErrUnsupportedMode)
	}
	mask, err:=normalizePlanes("box_blur", f, planes)
	if err!=nil {
		return nil, err
	}
	if radius==0 || passes==0 {
		return f, nil
	}

	hpasses, vpasses:=passes, passes
	if !mode.HasHorizontal() {
		hpasses=0
	}
	if !mode.HasVertical() {
		vpasses=0
	}

	switch path:=backend.SelectBox(backend.BoxRequest{Radius: radius, Format: f.Format}, caps); path {
	case backend.PathVectorBox, backend.PathLegacyBox:
		return native.BoxBlur(f, mask, radius, hpasses, radius, vpasses), nil

	case backend.PathExprConv:
		k, err:=kernel.Mean(radius)
		if err!=nil {
			return nil, err
		}
		cur:=f
		for _, axis:=range []kernel.ConvMode{kernel.Horizontal, kernel.Vertical} {
			if axis==kernel.Horizontal && hpasses==0 || axis==kernel.Vertical && vpasses==0 {
				continue
			}
			prog, err:=expr.Convolution(k, axis)
			if err!=nil {
				return nil, err
			}
			for p:=0; p<passes; p++ {
				cur, err=eng.Expr.EvalExpr(prog, []*frame.Frame{cur}, mask)
				if err!=nil {
					return nil, err
				}
			}
		}
		return cur, nil

	case backend.PathConv:
		k, err:=kernel.Mean(radius)
		if err!=nil {
			return nil, err
		}
		cur:=f
		for p:=0; p<passes; p++ {
			cur=native.ConvolveFrame(cur, k, mode, mask)
		}
		return cur, nil

	default:
		return nil, fmt.Errorf("box_blur: no backend for radius %d: %w", radius, vblur.ErrMissingCapability)
	}
}
