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


// Package blur provides the public blur operator set: box, side box,
// Gaussian, min blur, soft blur reduce, median, bilateral and flux smooth.
// Operators validate parameters at the boundary, consult the backend
// capability set to select an execution path, and fan per-plane radius
// lists into scalar invocations.
package blur

import (
	"fmt"

	"github.com/mlnoga/vblur"
	"github.com/mlnoga/vblur/internal/frame"
)

// Converts a plane index selection into a per-plane flag mask.
// A nil selection means all planes.
func normalizePlanes(op string, f *frame.Frame, planes []int) ([]bool, error) {
	mask:=make([]bool, f.NumPlanes())
	if planes==nil {
		for i:=range mask {
			mask[i]=true
		}
		return mask, nil
	}
	for _, p:=range planes {
		if p<0 || p>=f.NumPlanes() {
			return nil, fmt.Errorf("%s: plane %d out of range 0..%d: %w",
				op, p, f.NumPlanes()-1, vblur.ErrInvalidParameter)
		}
		mask[p]=true
	}
	return mask, nil
}

// Extends a per-plane parameter sequence to the plane count by repeating
// the last value
func normSeq(vals []float64, numPlanes int) []float64 {
	out:=make([]float64, numPlanes)
	for i:=range out {
		if i<len(vals) {
			out[i]=vals[i]
		} else {
			out[i]=vals[len(vals)-1]
		}
	}
	return out
}
