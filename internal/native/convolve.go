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


// Package native implements the always-present CPU filter primitives and
// the optional engines it registers with the backend: separable
// convolution, moving-sum box blur, 3x3 median, the expression-program
// evaluator, the scaling-engine Gaussian, temporal median and soften, and
// the CPU bilateral filter.
package native

import (
    "math"

    "github.com/mlnoga/vblur/internal/frame"
    "github.com/mlnoga/vblur/internal/kernel"
)

// ConvolveFrame applies the kernel to the selected planes of the frame as
// separable passes along the axes the mode requests, horizontal first.
// Supports arbitrary tap offsets, including one-sided half kernels.
// Out of bounds samples mirror back into the plane.
func ConvolveFrame(f *frame.Frame, k *kernel.Kernel, mode kernel.ConvMode, planes []bool) *frame.Frame {
    out:=frame.NewLike(f)
    for i, src:=range f.Planes {
        dst:=out.Planes[i]
        if planes!=nil && (i>=len(planes) || !planes[i]) {
            copy(dst, src)
            continue
        }
        switch {
        case mode.HasHorizontal() && mode.HasVertical():
            tmp:=make([]float32, len(src))
            convolve1D(tmp, src, f.Width, f.Height, k, true, f.Format)
            convolve1D(dst, tmp, f.Width, f.Height, k, false, f.Format)
        case mode.HasHorizontal():
            convolve1D(dst, src, f.Width, f.Height, k, true, f.Format)
        case mode.HasVertical():
            convolve1D(dst, src, f.Width, f.Height, k, false, f.Format)
        default:
            copy(dst, src)
        }
    }
    return out
}

// Convolves one plane along one axis, storing rounded and clamped samples
// for integer formats
func convolve1D(dst, src []float32, width, height int, k *kernel.Kernel, horizontal bool, format frame.SampleFormat) {
    invScale:=1.0
    if k.Scale!=0 { invScale=1.0/k.Scale }
    for y:=0; y<height; y++ {
        for x:=0; x<width; x++ {
            sum:=0.0
            for _, t:=range k.Taps {
                var sx, sy int
                if horizontal {
                    sx, sy=reflect(width, x+t.Offset), y
                } else {
                    sx, sy=x, reflect(height, y+t.Offset)
                }
                sum+=float64(src[sy*width+sx]) * t.Weight
            }
            v:=sum * invScale
            if k.Clamp!=nil {
                if v<k.Clamp[0] { v=k.Clamp[0] }
                if v>k.Clamp[1] { v=k.Clamp[1] }
            }
            dst[y*width+x]=storeSample(v, format)
        }
    }
}

// Rounds and clamps a sample into the format range on store; float formats
// pass through
func storeSample(v float64, format frame.SampleFormat) float32 {
    if format.Float {
        return float32(v)
    }
    v=math.Floor(v + 0.5)
    if v<0 { v=0 }
    if max:=float64(format.MaxValue()); v>max { v=max }
    return float32(v)
}

// Reflects out of bounds coordinates back into [0, size-1]
func reflect(size, x int) int {
    if x<0 {
        return -x - 1
    }
    if x>=size {
        return 2*size - x - 1
    }
    return x
}
