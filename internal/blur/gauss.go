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

// GaussBlur applies a Gaussian blur of the given standard deviation along
// the axes selected by mode. taps is the one-sided tap count of the
// kernel; pass zero to derive it from sigma so that the truncated tail
// mass stays below one percent.
func GaussBlur(f *frame.Frame, sigma float64, taps int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	return gaussBlurWith(backend.Current(), backend.Active(), f, sigma, taps, mode, planes)
}

// GaussBlurPerPlane applies GaussBlur with a separate sigma per plane.
func GaussBlurPerPlane(f *frame.Frame, sigmas []float64, taps int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	caps, eng:=backend.Current(), backend.Active()
	return normalizeRadiusFloat("gauss_blur", f, sigmas, planes,
		func(f *frame.Frame, sigma float64, group []int) (*frame.Frame, error) {
			return gaussBlurWith(caps, eng, f, sigma, taps, mode, group)
		})
}

func gaussBlurWith(caps backend.CapabilitySet, eng *backend.Engines, f *frame.Frame,
	sigma float64, taps int, mode kernel.ConvMode, planes []int) (*frame.Frame, error) {
	if sigma<=0 {
		return nil, fmt.Errorf("gauss_blur: sigma %g out of range: %w", sigma, vblur.ErrInvalidParameter)
	}
	if taps<0 {
		return nil, fmt.Errorf("gauss_blur: taps %d out of range: %w", taps, vblur.ErrInvalidParameter)
	}
	if mode==kernel.Square {
		return nil, fmt.Errorf("gauss_blur: %v mode: %w", mode, vblur.ErrUnsupportedMode)
	}
	mask, err:=normalizePlanes("gauss_blur", f, planes)
	if err!=nil {
		return nil, err
	}

	// a single-axis blur caps sigma at that axis's extent
	if mode==kernel.Horizontal && sigma>float64(f.Width) {
		sigma=float64(f.Width)
	}
	if mode==kernel.Vertical && sigma>float64(f.Height) {
		sigma=float64(f.Height)
	}
	if taps==0 {
		taps=kernel.TapsForGaussSigma(sigma)
	}

	// Integer weights keep rounding stable on integer frames. Floating
	// point frames, and wide kernels that no scaling engine will take
	// over, use exact weights instead.
	scale:=1023.0
	if f.Format.Float || (!caps.HasScaleEngine && taps>backend.BoxExprMaxRadius) {
		scale=1.0
	}

	switch path:=backend.SelectGauss(backend.GaussRequest{Taps: taps, Format: f.Format, Mode: mode}, caps); path {
	case backend.PathConv:
		k, err:=kernel.Gauss(sigma, taps, scale)
		if err!=nil {
			return nil, err
		}
		return native.ConvolveFrame(f, k, mode, mask), nil

	case backend.PathScale:
		work:=f
		restore:=false
		if f.Format.Bits>16 {
			work=frame.ConvertDepth(f, frame.U16)
			restore=true
		}
		out, err:=eng.Scale.GaussBlur(work, sigma, taps, mode, mask)
		if err!=nil {
			return nil, err
		}
		if restore {
			out=frame.ConvertDepth(out, f.Format)
		}
		return out, nil

	case backend.PathExprConv:
		k, err:=kernel.Gauss(sigma, taps, scale)
		if err!=nil {
			return nil, err
		}
		cur:=f
		for _, axis:=range []kernel.ConvMode{kernel.Horizontal, kernel.Vertical} {
			if !mode.HasHorizontal() && axis==kernel.Horizontal ||
				!mode.HasVertical() && axis==kernel.Vertical {
				continue
			}
			prog, err:=expr.Convolution(k, axis)
			if err!=nil {
				return nil, err
			}
			cur, err=eng.Expr.EvalExpr(prog, []*frame.Frame{cur}, mask)
			if err!=nil {
				return nil, err
			}
		}
		return cur, nil

	default:
		return nil, fmt.Errorf("gauss_blur: sigma %g needs %d taps and no backend accepts the kernel: %w",
			sigma, taps, vblur.ErrMissingCapability)
	}
}
