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

    "github.com/mlnoga/vblur/internal/frame"
    "github.com/mlnoga/vblur/internal/median"
)

// Per-pixel median across a temporal window of 2r+1 frames. The window
// shrinks at the start and end of the sequence.
type temporalMedian struct{}

func (temporalMedian) TemporalMedian(seq []*frame.Frame, radius int, planes []bool) ([]*frame.Frame, error) {
    if len(seq)==0 {
        return nil, fmt.Errorf("temporal median: empty sequence")
    }
    first:=seq[0]
    for i, f:=range seq {
        if f.Width!=first.Width || f.Height!=first.Height || f.NumPlanes()!=first.NumPlanes() {
            return nil, fmt.Errorf("temporal median: frame %d shape mismatch", i)
        }
    }

    out:=make([]*frame.Frame, len(seq))
    window:=make([]float32, 0, 2*radius+1)
    for i:=range seq {
        lo, hi:=i-radius, i+radius
        if lo<0 { lo=0 }
        if hi>len(seq)-1 { hi=len(seq)-1 }

        o:=frame.NewLike(first)
        for plane:=0; plane<first.NumPlanes(); plane++ {
            dst:=o.Planes[plane]
            if planes!=nil && (plane>=len(planes) || !planes[plane]) {
                copy(dst, seq[i].Planes[plane])
                continue
            }
            for j:=range dst {
                window=window[:0]
                for t:=lo; t<=hi; t++ {
                    window=append(window, seq[t].Planes[plane][j])
                }
                dst[j]=median.Of(window)
            }
        }
        out[i]=o
    }
    return out, nil
}
