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

// SideBoxBlur blurs with eight one-sided box combinations and keeps, per
// pixel, the candidate closest to the input. One-sided kernels never
// average across an edge from both sides at once, so edges stay put.
// Without inverse, the result is recentered on a symmetric box blur and
// lightly smoothed; with inverse, the raw closest candidate is returned.
func SideBoxBlur(f *frame.Frame, radius int, planes []int, inverse bool) (*frame.Frame, error) {
	return sideBoxBlurWith(backend.Current(), backend.Active(), f, radius, planes, inverse)
}

// SideBoxBlurPerPlane applies SideBoxBlur with a separate radius per plane.
func SideBoxBlurPerPlane(f *frame.Frame, radii []int, planes []int, inverse bool) (*frame.Frame, error) {
	caps, eng:=backend.Current(), backend.Active()
	return normalizeRadiusInt("side_box_blur", f, radii, planes,
		func(f *frame.Frame, radius int, group []int) (*frame.Frame, error) {
			return sideBoxBlurWith(caps, eng, f, radius, group, inverse)
		})
}

func sideBoxBlurWith(caps backend.CapabilitySet, eng *backend.Engines, f *frame.Frame,
	radius int, planes []int, inverse bool) (*frame.Frame, error) {
	if radius<1 {
		return nil, fmt.Errorf("side_box_blur: radius %d out of range: %w", radius, vblur.ErrInvalidParameter)
	}
	mask, err:=normalizePlanes("side_box_blur", f, planes)
	if err!=nil {
		return nil, err
	}

	left, err:=kernel.HalfLeft(radius)
	if err!=nil {
		return nil, err
	}
	right, err:=kernel.HalfRight(radius)
	if err!=nil {
		return nil, err
	}

	// vertical one-sided blurs, then each crossed with the horizontal
	// ones; the symmetric/symmetric combination duplicates a plain box
	// blur and is skipped
	vrt:=[3]*frame.Frame{
		native.ConvolveFrame(f, left, kernel.Vertical, mask),
		native.ConvolveFrame(f, right, kernel.Vertical, mask),
		native.BoxBlur(f, mask, 0, 0, radius, 1),
	}
	var candidates []*frame.Frame
	for i, v:=range vrt {
		for j:=0; j<3; j++ {
			if i==2 && j==2 {
				continue
			}
			switch j {
			case 0:
				candidates=append(candidates, native.ConvolveFrame(v, left, kernel.Horizontal, mask))
			case 1:
				candidates=append(candidates, native.ConvolveFrame(v, right, kernel.Horizontal, mask))
			case 2:
				candidates=append(candidates, native.BoxBlur(v, mask, radius, 1, 0, 0))
			}
		}
	}

	var comp *frame.Frame
	if !inverse {
		comp, err=boxBlurWith(caps, eng, f, radius, 1, kernel.HV, planes)
		if err!=nil {
			return nil, err
		}
	}

	var cum *frame.Frame
	if backend.SelectSideMerge(caps)==backend.PathMergeExpr {
		srcs:=append([]*frame.Frame{f}, candidates...)
		if comp!=nil {
			srcs=append(srcs, comp)
		}
		prog, err:=expr.MergeClosest(len(candidates), comp!=nil)
		if err!=nil {
			return nil, err
		}
		cum, err=eng.Expr.EvalExpr(prog, srcs, mask)
		if err!=nil {
			return nil, err
		}
	} else {
		cum=candidates[0]
		for _, next:=range candidates[1:] {
			cum=closestPick(f, cum, next, mask)
		}
		if comp!=nil {
			cum=frame.MergeDiff(frame.MakeDiff(f, cum, mask), comp, mask)
		}
	}

	if comp!=nil {
		smooth:=radius/2
		if smooth>1 {
			smooth=1
		}
		return boxBlurWith(caps, eng, cum, 1, smooth, kernel.HV, planes)
	}
	return cum, nil
}

// closestPick keeps, per sample, whichever of cum and next lies closer to
// the reference, ties favoring next. Unselected planes come from cum.
func closestPick(ref, cum, next *frame.Frame, mask []bool) *frame.Frame {
	out:=frame.NewLike(cum)
	for p:=range out.Planes {
		if p<len(mask) && !mask[p] {
			copy(out.Planes[p], cum.Planes[p])
			continue
		}
		r, c, n, o:=ref.Planes[p], cum.Planes[p], next.Planes[p], out.Planes[p]
		for i:=range o {
			dc, dn:=c[i]-r[i], n[i]-r[i]
			if dc<0 {
				dc=-dc
			}
			if dn<0 {
				dn=-dn
			}
			if dc<dn {
				o[i]=c[i]
			} else {
				o[i]=n[i]
			}
		}
	}
	return out
}
