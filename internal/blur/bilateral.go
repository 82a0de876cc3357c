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

// Bilateral applies an edge-preserving bilateral filter. sigmaS and sigmaR
// are per-plane spatial and range deviations; short sequences repeat their
// last value. ref, when set, supplies the range weights in place of the
// frame itself and must match its geometry. gpu forces device placement:
// nil lets the backend decide, true demands a GPU path, false forbids one.
func Bilateral(f *frame.Frame, sigmaS, sigmaR []float64, ref *frame.Frame, gpu *bool, planes []int) (*frame.Frame, error) {
	return bilateralWith(backend.Current(), backend.Active(), f, sigmaS, sigmaR, ref, gpu, planes)
}

func bilateralWith(caps backend.CapabilitySet, eng *backend.Engines, f *frame.Frame,
	sigmaS, sigmaR []float64, ref *frame.Frame, gpu *bool, planes []int) (*frame.Frame, error) {
	if len(sigmaS)==0 || len(sigmaR)==0 {
		return nil, fmt.Errorf("bilateral: empty sigma sequence: %w", vblur.ErrInvalidParameter)
	}
	for _, s:=range sigmaS {
		if s<=0 {
			return nil, fmt.Errorf("bilateral: sigmaS %g out of range: %w", s, vblur.ErrInvalidParameter)
		}
	}
	for _, s:=range sigmaR {
		if s<=0 {
			return nil, fmt.Errorf("bilateral: sigmaR %g out of range: %w", s, vblur.ErrInvalidParameter)
		}
	}
	mask, err:=normalizePlanes("bilateral", f, planes)
	if err!=nil {
		return nil, err
	}
	if ref!=nil && (ref.Width!=f.Width || ref.Height!=f.Height || ref.NumPlanes()!=f.NumPlanes()) {
		return nil, fmt.Errorf("bilateral: reference %dx%dx%d against frame %dx%dx%d: %w",
			ref.Width, ref.Height, ref.NumPlanes(), f.Width, f.Height, f.NumPlanes(),
			vblur.ErrFormatMismatch)
	}
	sigmaS=normSeq(sigmaS, f.NumPlanes())
	sigmaR=normSeq(sigmaR, f.NumPlanes())

	var engine backend.BilateralEngine
	switch path:=backend.SelectBilateral(backend.BilateralRequest{GPU: gpu}, caps); path {
	case backend.PathBilateralGPURTC:
		engine=eng.BilateralGPURTC
	case backend.PathBilateralGPU:
		engine=eng.BilateralGPU
	case backend.PathBilateralCPU:
		engine=eng.BilateralCPU
	default:
		return nil, fmt.Errorf("bilateral: no backend satisfies the device constraint: %w",
			vblur.ErrMissingCapability)
	}

	// engines declare an upper bit depth; normalize deeper or float
	// frames down and restore afterwards
	work, workRef:=f, ref
	restore:=false
	if f.Format.Float || f.Format.Bits>engine.MaxBits() {
		work=frame.ConvertDepth(f, frame.SampleFormat{Bits: engine.MaxBits()})
		restore=true
	}
	if workRef!=nil && workRef.Format!=work.Format {
		workRef=frame.ConvertDepth(workRef, work.Format)
	}

	out, err:=engine.Bilateral(work, workRef, sigmaS, sigmaR, mask)
	if err!=nil {
		return nil, err
	}
	if restore {
		out=frame.ConvertDepth(out, f.Format)
	}
	return out, nil
}
