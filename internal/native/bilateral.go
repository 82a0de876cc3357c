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

    "github.com/mlnoga/vblur/internal/frame"
)

// CPU bilateral filter: Gaussian spatial weights times Gaussian range
// weights on the reference plane, normalized per pixel. Accepts integer
// frames up to 16 bits; callers normalize deeper or float frames down
// before invocation.
type bilateralCPU struct{}

func (bilateralCPU) MaxBits() int { return 16 }

func (bilateralCPU) Bilateral(f, ref *frame.Frame, sigmaS, sigmaR []float64, planes []bool) (*frame.Frame, error) {
    if f.Format.Float || f.Format.Bits>16 {
        return nil, fmt.Errorf("bilateral: unsupported format %v, want integer up to 16 bits", f.Format)
    }
    if ref==nil { ref=f }
    if ref.Format!=f.Format || ref.Width!=f.Width || ref.Height!=f.Height {
        return nil, fmt.Errorf("bilateral: reference frame %dx%d %v does not match %dx%d %v",
            ref.Width, ref.Height, ref.Format, f.Width, f.Height, f.Format)
    }

    out:=frame.NewLike(f)
    maxVal:=float64(f.Format.MaxValue())
    for plane:=0; plane<f.NumPlanes(); plane++ {
        src, rp, dst:=f.Planes[plane], ref.Planes[plane], out.Planes[plane]
        if planes!=nil && (plane>=len(planes) || !planes[plane]) {
            copy(dst, src)
            continue
        }
        sS:=planeParam(sigmaS, plane)
        sR:=planeParam(sigmaR, plane) * maxVal
        radius:=int(sS*3 + 0.5)
        if radius<1 { radius=1 }

        spatial:=spatialWeights(radius, sS)
        rangeDenom:=2 * sR * sR
        for y:=0; y<f.Height; y++ {
            for x:=0; x<f.Width; x++ {
                center:=float64(rp[y*f.Width+x])
                sum, weight:=0.0, 0.0
                for dy:=-radius; dy<=radius; dy++ {
                    sy:=reflect(f.Height, y+dy)
                    for dx:=-radius; dx<=radius; dx++ {
                        sx:=reflect(f.Width, x+dx)
                        d:=float64(rp[sy*f.Width+sx]) - center
                        w:=spatial[(dy+radius)*(2*radius+1)+dx+radius] * math.Exp(-d*d/rangeDenom)
                        sum+=w * float64(src[sy*f.Width+sx])
                        weight+=w
                    }
                }
                dst[y*f.Width+x]=storeSample(sum/weight, f.Format)
            }
        }
    }
    return out, nil
}

func planeParam(params []float64, plane int) float64 {
    if plane<len(params) { return params[plane] }
    return params[len(params)-1]
}

func spatialWeights(radius int, sigma float64) []float64 {
    n:=2*radius + 1
    w:=make([]float64, n*n)
    denom:=2 * sigma * sigma
    for dy:=-radius; dy<=radius; dy++ {
        for dx:=-radius; dx<=radius; dx++ {
            w[(dy+radius)*n+dx+radius]=math.Exp(-float64(dx*dx+dy*dy) / denom)
        }
    }
    return w
}
