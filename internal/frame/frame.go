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


package frame

import (
	"fmt"

	"github.com/valyala/fastrand"
)

// Sample format of a frame. Integer formats store values in [0, 2^Bits-1],
// exactly representable in float32 for up to 16 bits. Float formats store
// values nominally in [0,1]; difference frames may carry negative values.
type SampleFormat struct {
	Float bool // true for floating point samples
	Bits  int  // bits per sample: 8..16 for integer, 16 or 32 for float
}

// Common sample formats
var (
	U8  = SampleFormat{Float: false, Bits: 8}
	U10 = SampleFormat{Float: false, Bits: 10}
	U16 = SampleFormat{Float: false, Bits: 16}
	F16 = SampleFormat{Float: true, Bits: 16}
	F32 = SampleFormat{Float: true, Bits: 32}
)

// Largest representable sample value: 2^Bits-1 for integer formats, 1 for float
func (sf SampleFormat) MaxValue() float32 {
	if sf.Float {
		return 1
	}
	return float32(uint32(1)<<uint(sf.Bits) - 1)
}

// Difference-neutral sample value: half range for integer formats, zero for float
func (sf SampleFormat) Neutral() float32 {
	if sf.Float {
		return 0
	}
	return float32(uint32(1) << uint(sf.Bits-1))
}

func (sf SampleFormat) String() string {
	if sf.Float {
		return fmt.Sprintf("float%d", sf.Bits)
	}
	return fmt.Sprintf("uint%d", sf.Bits)
}

// A multi-plane raster frame. All planes share the same dimensions.
// Values live in float32 storage regardless of the declared sample format;
// the format governs range, rounding on store and bit-depth conversion.
type Frame struct {
	Width  int
	Height int
	Format SampleFormat

	Planes [][]float32 // one buffer of Width*Height samples per plane
}

// Creates a frame with the given dimensions and zeroed planes
func New(width, height, numPlanes int, format SampleFormat) *Frame {
	f := &Frame{
		Width:  width,
		Height: height,
		Format: format,
		Planes: make([][]float32, numPlanes),
	}
	for i := range f.Planes {
		f.Planes[i] = make([]float32, width*height)
	}
	return f
}

// Creates an empty frame with the same shape and format as the given one
func NewLike(f *Frame) *Frame {
	return New(f.Width, f.Height, len(f.Planes), f.Format)
}

func (f *Frame) NumPlanes() int { return len(f.Planes) }

// Creates a deep copy of the frame
func (f *Frame) Clone() *Frame {
	c := NewLike(f)
	for i, p := range f.Planes {
		copy(c.Planes[i], p)
	}
	return c
}

// Sample at the given plane coordinate. No bounds checking.
func (f *Frame) At(plane, x, y int) float32 {
	return f.Planes[plane][y*f.Width+x]
}

// Sets the sample at the given plane coordinate. No bounds checking.
func (f *Frame) Set(plane, x, y int, v float32) {
	f.Planes[plane][y*f.Width+x] = v
}

// Splits a frame into single-plane frames, copying plane data
func SplitPlanes(f *Frame) []*Frame {
	out := make([]*Frame, len(f.Planes))
	for i, p := range f.Planes {
		s := New(f.Width, f.Height, 1, f.Format)
		copy(s.Planes[0], p)
		out[i] = s
	}
	return out
}

// Combines single-plane frames into one multi-plane frame, preserving order.
// All inputs must share dimensions and format.
func JoinPlanes(frames []*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("join: no planes given")
	}
	first := frames[0]
	out := New(first.Width, first.Height, len(frames), first.Format)
	for i, f := range frames {
		if f.Width != first.Width || f.Height != first.Height || f.Format != first.Format {
			return nil, fmt.Errorf("join: plane %d is %dx%d %v, want %dx%d %v",
				i, f.Width, f.Height, f.Format, first.Width, first.Height, first.Format)
		}
		copy(out.Planes[i], f.Planes[0])
	}
	return out, nil
}

// Fills one plane with a constant value
func (f *Frame) Fill(plane int, v float32) {
	p := f.Planes[plane]
	for i := range p {
		p[i] = v
	}
}

// Fills all planes with uniform noise across the full sample range
func (f *Frame) FillNoise(rng *fastrand.RNG) {
	max := f.Format.MaxValue()
	for _, p := range f.Planes {
		if f.Format.Float {
			for i := range p {
				p[i] = float32(rng.Uint32n(1 << 24)) * max / float32(1<<24-1)
			}
		} else {
			for i := range p {
				p[i] = float32(rng.Uint32n(uint32(max) + 1))
			}
		}
	}
}

// Tells whether the given plane of two frames holds bit-identical samples
func EqualPlanes(a, b *Frame, plane int) bool {
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	pa, pb := a.Planes[plane], b.Planes[plane]
	for i, v := range pa {
		if v != pb[i] {
			return false
		}
	}
	return true
}
