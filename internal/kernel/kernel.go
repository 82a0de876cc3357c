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


// Package kernel computes normalized numeric convolution kernels for the
// blur operators: uniform box, binomial and truncated Gaussian, plus the
// one-sided half kernels used by directional blurs.
package kernel

import (
    "fmt"

    "gonum.org/v1/gonum/floats"
    "gonum.org/v1/gonum/stat/combin"

    "github.com/mlnoga/vblur"
)

// Convolution mode: which spatial axes an operation applies to.
// Square implies one fused 2D neighborhood rather than separable 1D passes.
type ConvMode int

const (
    Horizontal ConvMode = iota
    Vertical
    HV
    Square
)

func (m ConvMode) String() string {
    switch m {
    case Horizontal:
        return "h"
    case Vertical:
        return "v"
    case HV:
        return "hv"
    case Square:
        return "s"
    }
    return fmt.Sprintf("ConvMode(%d)", int(m))
}

// Tells whether the mode includes a horizontal pass
func (m ConvMode) HasHorizontal() bool { return m==Horizontal || m==HV || m==Square }

// Tells whether the mode includes a vertical pass
func (m ConvMode) HasVertical() bool { return m==Vertical || m==HV || m==Square }

// One weighted sample position of a convolution kernel
type Tap struct {
    Offset int
    Weight float64
}

// A 1D convolution kernel: an ordered sequence of taps, a scale factor the
// tap weights sum to, and an optional output clamp range. Immutable once
// built. Symmetric kernels are odd-centered around offset zero.
type Kernel struct {
    Taps  []Tap
    Scale float64     // declared weight sum; evaluation divides by this
    Clamp *[2]float64 // optional output clamp range
}

func (k *Kernel) Len() int { return len(k.Taps) }

// Sum of the tap weights
func (k *Kernel) Sum() float64 {
    w:=make([]float64, len(k.Taps))
    for i, t:=range k.Taps {
        w[i]=t.Weight
    }
    return floats.Sum(w)
}

// Mean returns the uniform box kernel of the given radius: 2r+1 taps of
// weight 1/(2r+1) each.
func Mean(radius int) (*Kernel, error) {
    if radius<0 {
        return nil, fmt.Errorf("mean kernel: radius %d: %w", radius, vblur.ErrInvalidParameter)
    }
    n:=2*radius+1
    w:=1.0/float64(n)
    taps:=make([]Tap, n)
    for i:=range taps {
        taps[i]=Tap{Offset: i - radius, Weight: w}
    }
    return &Kernel{Taps: taps, Scale: 1}, nil
}

// Binomial returns the kernel with weights from row 2r of Pascal's triangle,
// normalized to sum 1. This is the soft low-pass basis used by min-blur and
// soft-blur-reduce.
func Binomial(radius int) (*Kernel, error) {
    if radius<0 {
        return nil, fmt.Errorf("binomial kernel: radius %d: %w", radius, vblur.ErrInvalidParameter)
    }
    n:=2*radius+1
    w:=make([]float64, n)
    for i:=range w {
        w[i]=float64(combin.Binomial(2*radius, i))
    }
    floats.Scale(1/floats.Sum(w), w)

    taps:=make([]Tap, n)
    for i:=range taps {
        taps[i]=Tap{Offset: i - radius, Weight: w[i]}
    }
    return &Kernel{Taps: taps, Scale: 1}, nil
}

// HalfLeft returns the one-sided uniform kernel covering offsets -r..0,
// normalized to sum 1 on its own. Built independently, not by masking a
// symmetric kernel.
func HalfLeft(radius int) (*Kernel, error) {
    if radius<0 {
        return nil, fmt.Errorf("half kernel: radius %d: %w", radius, vblur.ErrInvalidParameter)
    }
    n:=radius+1
    w:=1.0/float64(n)
    taps:=make([]Tap, n)
    for i:=range taps {
        taps[i]=Tap{Offset: -radius + i, Weight: w}
    }
    return &Kernel{Taps: taps, Scale: 1}, nil
}

// HalfRight returns the mirrored one-sided uniform kernel covering 0..r.
func HalfRight(radius int) (*Kernel, error) {
    k, err:=HalfLeft(radius)
    if err!=nil { return nil, err }
    for i:=range k.Taps {
        k.Taps[i].Offset=-k.Taps[i].Offset
    }
    return k, nil
}
