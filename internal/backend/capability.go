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


// Package backend describes which accelerated execution paths are available
// at run time, and selects the cheapest capability-compatible path for each
// operator request. Capabilities are probed once per process and read-only
// thereafter; selection is a pure function of request and capability set.
package backend

import (
	"strings"
	"sync"

	"github.com/mlnoga/vblur/internal/expr"
	"github.com/mlnoga/vblur/internal/frame"
	"github.com/mlnoga/vblur/internal/kernel"
	"github.com/mlnoga/vblur/internal/log"
)

// Process-wide snapshot of the available accelerated execution paths.
// Initialized once at process start; never mutated mid-operation. Absence
// of a capability is not an error, it is a normal selection signal.
type CapabilitySet struct {
	HasVectorBoxBlur   bool // vectorized box blur primitive
	HasExprEngine      bool // accelerated expression-program evaluator
	HasScaleEngine     bool // resampling engine usable for Gaussian blurs
	HasCPUBilateral    bool
	HasGPUBilateral    bool
	HasGPUBilateralRTC bool
	HasTemporalMedian  bool
	HasTemporalSoften  bool
}

func (c CapabilitySet) String() string {
	names:=[]struct {
		set  bool
		name string
	}{
		{c.HasVectorBoxBlur, "vector-box"},
		{c.HasExprEngine, "expr"},
		{c.HasScaleEngine, "scale"},
		{c.HasCPUBilateral, "bilateral"},
		{c.HasGPUBilateral, "bilateral-gpu"},
		{c.HasGPUBilateralRTC, "bilateral-gpu-rtc"},
		{c.HasTemporalMedian, "tmedian"},
		{c.HasTemporalSoften, "tsoften"},
	}
	b:=strings.Builder{}
	for _, n:=range names {
		if !n.set { continue }
		if b.Len()>0 { b.WriteByte(' ') }
		b.WriteString(n.name)
	}
	if b.Len()==0 { return "none" }
	return b.String()
}

// Evaluates an expression program over a list of input frames and a plane
// selection, returning one output frame
type ExprEngine interface {
	EvalExpr(p *expr.Program, srcs []*frame.Frame, planes []bool) (*frame.Frame, error)
}

// Applies a Gaussian blur through a resampling engine
type ScaleEngine interface {
	GaussBlur(f *frame.Frame, sigma float64, taps int, mode kernel.ConvMode, planes []bool) (*frame.Frame, error)
}

// Edge-preserving bilateral filter primitive. MaxBits declares the highest
// integer bit depth the primitive accepts; callers normalize deeper frames
// down before invocation and restore afterwards.
type BilateralEngine interface {
	Bilateral(f, ref *frame.Frame, sigmaS, sigmaR []float64, planes []bool) (*frame.Frame, error)
	MaxBits() int
}

// Per-pixel median across a temporal window of frames
type TemporalMedianEngine interface {
	TemporalMedian(seq []*frame.Frame, radius int, planes []bool) ([]*frame.Frame, error)
}

// Thresholded temporal averaging with scene-change awareness
type TemporalSoftenEngine interface {
	TemporalSoften(seq []*frame.Frame, radius int, lumaThreshold, chromaThreshold float32,
		scenechange int, planes []bool) ([]*frame.Frame, error)
}

// The registered native primitives. Slots left nil simply leave the
// corresponding capability unset.
type Engines struct {
	Expr            ExprEngine
	Scale           ScaleEngine
	BilateralCPU    BilateralEngine
	BilateralGPU    BilateralEngine
	BilateralGPURTC BilateralEngine
	TemporalMedian  TemporalMedianEngine
	TemporalSoften  TemporalSoftenEngine
}

var (
	engines Engines
	once    sync.Once
	probed  bool
	current CapabilitySet
)

// Current returns the process-wide capability set, probing it on first use.
// Cheap to call afterwards; re-probing mid-run is not supported.
func Current() CapabilitySet {
	once.Do(probe)
	return current
}

// Active returns the registered engines after ensuring the probe ran
func Active() *Engines {
	once.Do(probe)
	return &engines
}

func probe() {
	current=CapabilitySet{
		HasVectorBoxBlur:   vectorBoxAvailable(),
		HasExprEngine:      engines.Expr!=nil,
		HasScaleEngine:     engines.Scale!=nil,
		HasCPUBilateral:    engines.BilateralCPU!=nil,
		HasGPUBilateral:    engines.BilateralGPU!=nil,
		HasGPUBilateralRTC: engines.BilateralGPURTC!=nil,
		HasTemporalMedian:  engines.TemporalMedian!=nil,
		HasTemporalSoften:  engines.TemporalSoften!=nil,
	}
	probed=true
	log.Printf("backend capabilities: %v\n", current)
}

// Engine registration. Must happen during package initialization, before
// the first probe; re-registering a slot is a programming error.

func RegisterExprEngine(e ExprEngine) {
	checkRegister("expression engine", engines.Expr!=nil)
	engines.Expr=e
}

func RegisterScaleEngine(e ScaleEngine) {
	checkRegister("scale engine", engines.Scale!=nil)
	engines.Scale=e
}

func RegisterBilateralCPU(e BilateralEngine) {
	checkRegister("CPU bilateral", engines.BilateralCPU!=nil)
	engines.BilateralCPU=e
}

func RegisterBilateralGPU(e BilateralEngine) {
	checkRegister("GPU bilateral", engines.BilateralGPU!=nil)
	engines.BilateralGPU=e
}

func RegisterBilateralGPURTC(e BilateralEngine) {
	checkRegister("GPU RTC bilateral", engines.BilateralGPURTC!=nil)
	engines.BilateralGPURTC=e
}

func RegisterTemporalMedian(e TemporalMedianEngine) {
	checkRegister("temporal median", engines.TemporalMedian!=nil)
	engines.TemporalMedian=e
}

func RegisterTemporalSoften(e TemporalSoftenEngine) {
	checkRegister("temporal soften", engines.TemporalSoften!=nil)
	engines.TemporalSoften=e
}

func checkRegister(what string, taken bool) {
	if probed { panic("backend: registering " + what + " after capability probe") }
	if taken { panic("backend: re-registering " + what) }
}
