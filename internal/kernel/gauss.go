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


package kernel

import (
    "fmt"
    "math"

    "github.com/mlnoga/vblur"
)

var sqrt2=math.Sqrt(2)

// Truncation threshold for Gaussian kernels: the mass allowed to fall
// outside the kernel on either side. 0.01 keeps at least 99% of the mass
// within the covered taps before renormalization.
const gaussAcceptOut=0.01

// Returns the definite integral of the Gaussian density with mean zero and
// standard deviation sigma, from -infinity to x
func gaussIntegral(sigma, x float64) float64 {
    return 0.5 * (1 + math.Erf(x/(sqrt2*sigma)))
}

// TapsForGaussSigma returns the one-sided tap count for a Gaussian of the
// given sigma: the smallest radius whose taps capture at least 99% of the
// mass. Deterministic and monotonically increasing in sigma; the resulting
// kernel width 2*taps+1 is always odd.
func TapsForGaussSigma(sigma float64) int {
    taps:=1
    for gaussIntegral(sigma, -0.5-float64(taps)) >= gaussAcceptOut {
        taps++
    }
    return taps
}

// Gauss samples a continuous Gaussian density of the given sigma at integer
// offsets -taps..taps via symbolic integration over each tap's interval,
// then normalizes the weights to sum to scale. Scale 1 yields unit gain for
// float pixel formats; a fixed integer scale such as 1023 preserves
// precision under integer rounding for fixed-point formats, in which case
// the taps carry rounded integer weights and the returned Scale is their
// exact sum.
func Gauss(sigma float64, taps int, scale float64) (*Kernel, error) {
    if sigma<=0 {
        return nil, fmt.Errorf("gauss kernel: sigma %g: %w", sigma, vblur.ErrInvalidParameter)
    }
    if taps<1 {
        return nil, fmt.Errorf("gauss kernel: taps %d: %w", taps, vblur.ErrInvalidParameter)
    }

    n:=2*taps+1
    w:=make([]float64, n)

    // Integrate the left half tap by tap, then mirror to the right half
    // to avoid numeric instability.
    sum:=0.0
    lower:=gaussIntegral(sigma, -0.5-float64(taps))
    for i:=0; i<=taps; i++ {
        upper:=gaussIntegral(sigma, -0.5-float64(taps)+float64(i+1))
        w[i]=upper - lower
        sum+=w[i]
        lower=upper
    }
    for i:=1; i<=taps; i++ {
        w[taps+i]=w[taps-i]
        sum+=w[taps-i]
    }

    factor:=scale/sum
    for i:=range w {
        w[i]*=factor
    }

    kernelScale:=scale
    if scale!=1 {
        // Fixed-point target: round the weights and declare their exact sum
        // as the scale, so integer evaluation divides by what was summed.
        kernelScale=0
        for i:=range w {
            w[i]=math.Round(w[i])
            kernelScale+=w[i]
        }
    }

    k:=&Kernel{Taps: make([]Tap, n), Scale: kernelScale}
    for i:=range w {
        k.Taps[i]=Tap{Offset: i - taps, Weight: w[i]}
    }
    return k, nil
}
