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
	"github.com/mlnoga/vblur/internal/frame"
)

// FluxSmooth denoises a frame sequence temporally: per pixel, a windowed
// median and a thresholded average are computed over time, and whichever
// lies closer to the original sample wins. threshold is on the 8 bit
// scale and widens with bit depth; scenechange, when positive, keeps
// averaging windows from crossing cuts.
func FluxSmooth(seq []*frame.Frame, radius, threshold, scenechange int, planes []int) ([]*frame.Frame, error) {
	return fluxSmoothWith(backend.Current(), backend.Active(), seq, radius, threshold, scenechange, planes)
}

func fluxSmoothWith(caps backend.CapabilitySet, eng *backend.Engines, seq []*frame.Frame,
	radius, threshold, scenechange int, planes []int) ([]*frame.Frame, error) {
	if len(seq)==0 {
		return nil, fmt.Errorf("flux_smooth: empty sequence: %w", vblur.ErrInvalidParameter)
	}
	if radius<1 || radius>7 {
		return nil, fmt.Errorf("flux_smooth: radius %d out of range 1..7: %w", radius, vblur.ErrInvalidParameter)
	}
	if threshold<0 {
		return nil, fmt.Errorf("flux_smooth: threshold %d out of range: %w", threshold, vblur.ErrInvalidParameter)
	}
	f:=seq[0]
	mask, err:=normalizePlanes("flux_smooth", f, planes)
	if err!=nil {
		return nil, err
	}
	if !caps.HasTemporalMedian || !caps.HasTemporalSoften {
		return nil, fmt.Errorf("flux_smooth: radius %d needs temporal primitives: %w",
			radius, vblur.ErrMissingCapability)
	}

	// scale the 8 bit threshold to the sample format
	thr:=float32(threshold)
	if f.Format.Float {
		thr/=255
	} else if f.Format.Bits>8 {
		thr=float32(threshold << (f.Format.Bits - 8))
	}
	cthr:=float32(0)
	for p:=1; p<len(mask); p++ {
		if mask[p] {
			cthr=thr
		}
	}

	med, err:=eng.TemporalMedian.TemporalMedian(seq, radius, mask)
	if err!=nil {
		return nil, err
	}
	avg, err:=eng.TemporalSoften.TemporalSoften(seq, radius, thr, cthr, scenechange, mask)
	if err!=nil {
		return nil, err
	}

	out:=make([]*frame.Frame, len(seq))
	for i:=range seq {
		out[i]=limitDiffMin(seq[i], avg[i], med[i], mask)
	}
	return out, nil
}

// limitDiffMin keeps, per sample, whichever of avg and med deviates less
// from the original, ties favoring avg.
func limitDiffMin(x, avg, med *frame.Frame, mask []bool) *frame.Frame {
	out:=frame.NewLike(x)
	for p:=range out.Planes {
		if p<len(mask) && !mask[p] {
			copy(out.Planes[p], x.Planes[p])
			continue
		}
		xs, as, ms, o:=x.Planes[p], avg.Planes[p], med.Planes[p], out.Planes[p]
		for i:=range o {
			da, dm:=as[i]-xs[i], ms[i]-xs[i]
			if da<0 {
				da=-da
			}
			if dm<0 {
				dm=-dm
			}
			if da<=dm {
				o[i]=as[i]
			} else {
				o[i]=ms[i]
			}
		}
	}
	return out
}
