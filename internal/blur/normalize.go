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
	"github.com/mlnoga/vblur/internal/frame"
)

// Fans a per-plane integer radius sequence into scalar operator
// invocations. Planes sharing a radius value are grouped into a single
// invocation; invocations chain on the result so every selected plane
// ends up processed exactly once, with distinct values applied in order
// of first appearance. Unselected planes pass through bit-identical.
func normalizeRadiusInt(op string, f *frame.Frame, values []int, planes []int,
	apply func(f *frame.Frame, value int, planes []int) (*frame.Frame, error)) (*frame.Frame, error) {
	if len(values)!=f.NumPlanes() {
		return nil, fmt.Errorf("%s: %d per-plane values for %d planes: %w",
			op, len(values), f.NumPlanes(), vblur.ErrInvalidParameter)
	}
	selected:=planes
	if selected==nil {
		selected=make([]int, f.NumPlanes())
		for i:=range selected {
			selected[i]=i
		}
	}
	cur:=f
	done:=make([]bool, f.NumPlanes())
	for _, p:=range selected {
		if p<0 || p>=f.NumPlanes() {
			return nil, fmt.Errorf("%s: plane %d out of range 0..%d: %w",
				op, p, f.NumPlanes()-1, vblur.ErrInvalidParameter)
		}
		if done[p] {
			continue
		}
		group:=[]int{}
		for _, q:=range selected {
			if q>=0 && q<f.NumPlanes() && !done[q] && values[q]==values[p] {
				group=append(group, q)
				done[q]=true
			}
		}
		res, err:=apply(cur, values[p], group)
		if err!=nil {
			return nil, err
		}
		cur=res
	}
	return cur, nil
}

// Like normalizeRadiusInt, for float-valued per-plane parameters.
func normalizeRadiusFloat(op string, f *frame.Frame, values []float64, planes []int,
	apply func(f *frame.Frame, value float64, planes []int) (*frame.Frame, error)) (*frame.Frame, error) {
	if len(values)!=f.NumPlanes() {
		return nil, fmt.Errorf("%s: %d per-plane values for %d planes: %w",
			op, len(values), f.NumPlanes(), vblur.ErrInvalidParameter)
	}
	selected:=planes
	if selected==nil {
		selected=make([]int, f.NumPlanes())
		for i:=range selected {
			selected[i]=i
		}
	}
	cur:=f
	done:=make([]bool, f.NumPlanes())
	for _, p:=range selected {
		if p<0 || p>=f.NumPlanes() {
			return nil, fmt.Errorf("%s: plane %d out of range 0..%d: %w",
				op, p, f.NumPlanes()-1, vblur.ErrInvalidParameter)
		}
		if done[p] {
			continue
		}
		group:=[]int{}
		for _, q:=range selected {
			if q>=0 && q<f.NumPlanes() && !done[q] && values[q]==values[p] {
				group=append(group, q)
				done[q]=true
			}
		}
		res, err:=apply(cur, values[p], group)
		if err!=nil {
			return nil, err
		}
		cur=res
	}
	return cur, nil
}
