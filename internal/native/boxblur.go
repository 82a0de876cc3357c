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


package native

// Moving-sum box blur. Cost per pass is independent of the radius: each
// line builds a prefix sum over mirrored margins, and every output sample
// is one prefix difference. Serves both the vectorized and the legacy box
// primitive slots of the selection chains: the AVX2-gated slot dispatches
// to this same scalar routine for now and merely reserves the slot for a
// vectorized kernel, so both paths produce identical samples.

import (
    "github.com/mlnoga/vblur/internal/frame"
)

// BoxBlur applies hpasses horizontal passes of radius hradius and vpasses
// vertical passes of radius vradius to the selected planes. A radius or
// pass count of zero leaves the axis untouched.
func BoxBlur(f *frame.Frame, planes []bool, hradius, hpasses, vradius, vpasses int) *frame.Frame {
    out:=frame.NewLike(f)
    for i, src:=range f.Planes {
        dst:=out.Planes[i]
        copy(dst, src)
        if planes!=nil && (i>=len(planes) || !planes[i]) {
            continue
        }
        if hradius>0 {
            for p:=0; p<hpasses; p++ {
                boxPassH(dst, f.Width, f.Height, hradius, f.Format)
            }
        }
        if vradius>0 {
            for p:=0; p<vpasses; p++ {
                boxPassV(dst, f.Width, f.Height, vradius, f.Format)
            }
        }
    }
    return out
}

// One horizontal box pass over a plane, in place
func boxPassH(data []float32, width, height, radius int, format frame.SampleFormat) {
    n:=2*radius + 1
    inv:=1.0/float64(n)
    prefix:=make([]float64, width+2*radius+1)
    for y:=0; y<height; y++ {
        row:=data[y*width : (y+1)*width]
        prefix[0]=0
        for i:=0; i<width+2*radius; i++ {
            prefix[i+1]=prefix[i] + float64(row[reflect(width, i-radius)])
        }
        for x:=0; x<width; x++ {
            row[x]=storeSample((prefix[x+n]-prefix[x])*inv, format)
        }
    }
}

// One vertical box pass over a plane, in place
func boxPassV(data []float32, width, height, radius int, format frame.SampleFormat) {
    n:=2*radius + 1
    inv:=1.0/float64(n)
    prefix:=make([]float64, height+2*radius+1)
    col:=make([]float32, height)
    for x:=0; x<width; x++ {
        for y:=0; y<height; y++ {
            col[y]=data[y*width+x]
        }
        prefix[0]=0
        for i:=0; i<height+2*radius; i++ {
            prefix[i+1]=prefix[i] + float64(col[reflect(height, i-radius)])
        }
        for y:=0; y<height; y++ {
            data[y*width+x]=storeSample((prefix[y+n]-prefix[y])*inv, format)
        }
    }
}
