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

import (
    "fmt"
    "math"

    "github.com/valyala/fastrand"

    "github.com/mlnoga/vblur/internal/frame"
)

// Number of subsampled pixels for the scene-change estimate
const scenechangeSamples=1024

// Thresholded temporal averaging: each pixel becomes the mean of the
// samples in its temporal window that lie within the plane threshold of the
// center sample. The window never crosses a scene change, detected via a
// fast subsampled mean absolute difference between neighboring frames.
type temporalSoften struct{}

func (temporalSoften) TemporalSoften(seq []*frame.Frame, radius int, lumaThreshold, chromaThreshold float32,
    scenechange int, planes []bool) ([]*frame.Frame, error) {
    if len(seq)==0 {
        return nil, fmt.Errorf("temporal soften: empty sequence")
    }
    first:=seq[0]
    for i, f:=range seq {
        if f.Width!=first.Width || f.Height!=first.Height || f.NumPlanes()!=first.NumPlanes() {
            return nil, fmt.Errorf("temporal soften: frame %d shape mismatch", i)
        }
    }

    // cut[i] is true when a scene change separates frame i-1 from frame i
    cut:=make([]bool, len(seq))
    if scenechange>0 {
        for i:=1; i<len(seq); i++ {
            cut[i]=sampledMeanAbsDiff(seq[i-1], seq[i])>float64(scenechange)
        }
    }

    out:=make([]*frame.Frame, len(seq))
    for i:=range seq {
        lo, hi:=i-radius, i+radius
        if lo<0 { lo=0 }
        if hi>len(seq)-1 { hi=len(seq)-1 }
        for t:=i; t>lo; t-- { // clip window at scene changes
            if cut[t] { lo=t; break }
        }
        for t:=i + 1; t<=hi; t++ {
            if cut[t] { hi=t - 1; break }
        }

        o:=frame.NewLike(first)
        for plane:=0; plane<first.NumPlanes(); plane++ {
            dst:=o.Planes[plane]
            src:=seq[i].Planes[plane]
            threshold:=lumaThreshold
            if plane>0 { threshold=chromaThreshold }
            if threshold<=0 || (planes!=nil && (plane>=len(planes) || !planes[plane])) {
                copy(dst, src)
                continue
            }
            for j, center:=range src {
                sum, count:=float64(center), 1
                for t:=lo; t<=hi; t++ {
                    if t==i { continue }
                    v:=seq[t].Planes[plane][j]
                    if d:=v - center; d<=threshold && d>=-threshold {
                        sum+=float64(v)
                        count++
                    }
                }
                dst[j]=storeSample(sum/float64(count), first.Format)
            }
        }
        out[i]=o
    }
    return out, nil
}

// Fast approximate mean absolute difference between the first planes of two
// frames, scaled to 8 bit range. Subsamples a fixed number of pixels.
func sampledMeanAbsDiff(a, b *frame.Frame) float64 {
    pa, pb:=a.Planes[0], b.Planes[0]
    max:=uint32(len(pa))
    rng:=fastrand.RNG{}
    sum:=0.0
    for i:=0; i<scenechangeSamples; i++ {
        index:=rng.Uint32n(max)
        sum+=math.Abs(float64(pa[index]) - float64(pb[index]))
    }
    mean:=sum/float64(scenechangeSamples)
    return mean * 255 / float64(a.Format.MaxValue())
}
