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


package backend

import (
	"github.com/mlnoga/vblur/internal/frame"
	"github.com/mlnoga/vblur/internal/kernel"
	"github.com/mlnoga/vblur/internal/log"
)

// An execution path for an operator request. Selection chains are ordered
// lists of (predicate, path) rules evaluated top-down, so priority order is
// an explicit, reviewable data structure. Selection is deterministic: the
// same request and capability set always yield the same path.
type Path int

const (
	PathNone Path = iota // no viable backend; callers raise a capability error
	PathVectorBox        // vectorized native box blur
	PathLegacyBox        // legacy native moving-sum box blur
	PathConv             // legacy native separable convolution
	PathExprConv         // compiled convolution program on the expression engine
	PathScale            // scaling-engine Gaussian
	PathMedian3x3        // direct 3x3 median primitive
	PathExprProgram      // compiled sorting-network program on the expression engine
	PathBilateralGPURTC
	PathBilateralGPU
	PathBilateralCPU
	PathMergeExpr // n-way closest-merge program on the expression engine
	PathMergeFold // iterative pairwise fallback merge
)

func (p Path) String() string {
	switch p {
	case PathNone:
		return "none"
	case PathVectorBox:
		return "vector-box"
	case PathLegacyBox:
		return "legacy-box"
	case PathConv:
		return "conv"
	case PathExprConv:
		return "expr-conv"
	case PathScale:
		return "scale"
	case PathMedian3x3:
		return "median3x3"
	case PathExprProgram:
		return "expr-program"
	case PathBilateralGPURTC:
		return "bilateral-gpu-rtc"
	case PathBilateralGPU:
		return "bilateral-gpu"
	case PathBilateralCPU:
		return "bilateral-cpu"
	case PathMergeExpr:
		return "merge-expr"
	case PathMergeFold:
		return "merge-fold"
	}
	return "invalid"
}

// Above this radius the compiled convolution program loses to the native
// moving-sum box blur
const BoxExprMaxRadius=12

// Longest kernel the native separable convolution primitive accepts
const ConvMaxLen=25

type BoxRequest struct {
	Radius int
	Format frame.SampleFormat
}

var boxChain=[]struct {
	name string
	when func(r BoxRequest, c CapabilitySet) bool
	path Path
}{
	{"vector box primitive", func(r BoxRequest, c CapabilitySet) bool {
		return c.HasVectorBoxBlur
	}, PathVectorBox},
	// The legacy box primitive is slow at small radii, and gives wrong
	// results for 16 bit float frames; compile instead where possible.
	{"expression convolution", func(r BoxRequest, c CapabilitySet) bool {
		return c.HasExprEngine && (r.Radius<=BoxExprMaxRadius || r.Format==frame.F16)
	}, PathExprConv},
	{"mean convolution", func(r BoxRequest, c CapabilitySet) bool {
		return r.Radius<=BoxExprMaxRadius
	}, PathConv},
	{"legacy box primitive", func(r BoxRequest, c CapabilitySet) bool {
		return true
	}, PathLegacyBox},
}

// SelectBox picks the execution path for a box blur request
func SelectBox(r BoxRequest, c CapabilitySet) Path {
	for _, rule:=range boxChain {
		if rule.when(r, c) {
			log.Printf("box_blur radius %d %v: %s -> %v\n", r.Radius, r.Format, rule.name, rule.path)
			return rule.path
		}
	}
	return PathNone
}

type GaussRequest struct {
	Taps   int
	Format frame.SampleFormat
	Mode   kernel.ConvMode
}

func (r GaussRequest) kernelLen() int { return 2*r.Taps + 1 }

var gaussChain=[]struct {
	name string
	when func(r GaussRequest, c CapabilitySet) bool
	path Path
}{
	{"direct convolution", func(r GaussRequest, c CapabilitySet) bool {
		return r.kernelLen()<=ConvMaxLen
	}, PathConv},
	// The scaling engine resamples at 16 bit integer precision; float
	// frames keep their exact weights on the expression engine instead.
	{"scaling engine", func(r GaussRequest, c CapabilitySet) bool {
		return c.HasScaleEngine && !r.Format.Float
	}, PathScale},
	{"expression convolution", func(r GaussRequest, c CapabilitySet) bool {
		return c.HasExprEngine
	}, PathExprConv},
}

// SelectGauss picks the execution path for a Gaussian blur request.
// Returns PathNone when the tap count exceeds the direct convolution limit
// and neither a scaling engine nor an expression engine exists; the caller
// must surface that as a capability error rather than degrade numerically.
func SelectGauss(r GaussRequest, c CapabilitySet) Path {
	for _, rule:=range gaussChain {
		if rule.when(r, c) {
			log.Printf("gauss_blur %d taps %v: %s -> %v\n", r.Taps, r.Format, rule.name, rule.path)
			return rule.path
		}
	}
	log.Printf("gauss_blur %d taps %v: no viable backend\n", r.Taps, r.Format)
	return PathNone
}

type MedianRequest struct {
	Radius int
	Mode   kernel.ConvMode
}

var medianChain=[]struct {
	name string
	when func(r MedianRequest, c CapabilitySet) bool
	path Path
}{
	{"direct 3x3 median", func(r MedianRequest, c CapabilitySet) bool {
		return r.Radius==1 && (r.Mode==kernel.HV || r.Mode==kernel.Square)
	}, PathMedian3x3},
	{"sorting network program", func(r MedianRequest, c CapabilitySet) bool {
		return c.HasExprEngine
	}, PathExprProgram},
}

// SelectMedian picks the execution path for a median blur request
func SelectMedian(r MedianRequest, c CapabilitySet) Path {
	for _, rule:=range medianChain {
		if rule.when(r, c) {
			log.Printf("median_blur radius %d mode %v: %s -> %v\n", r.Radius, r.Mode, rule.name, rule.path)
			return rule.path
		}
	}
	log.Printf("median_blur radius %d mode %v: no viable backend\n", r.Radius, r.Mode)
	return PathNone
}

// GPU nil requests automatic selection; true demands a GPU path, false
// forbids one.
type BilateralRequest struct {
	GPU *bool
}

func (r BilateralRequest) gpuAllowed() bool { return r.GPU==nil || *r.GPU }
func (r BilateralRequest) cpuAllowed() bool { return r.GPU==nil || !*r.GPU }

var bilateralChain=[]struct {
	name string
	when func(r BilateralRequest, c CapabilitySet) bool
	path Path
}{
	{"GPU RTC bilateral", func(r BilateralRequest, c CapabilitySet) bool {
		return r.gpuAllowed() && c.HasGPUBilateralRTC
	}, PathBilateralGPURTC},
	{"GPU bilateral", func(r BilateralRequest, c CapabilitySet) bool {
		return r.gpuAllowed() && c.HasGPUBilateral
	}, PathBilateralGPU},
	{"CPU bilateral", func(r BilateralRequest, c CapabilitySet) bool {
		return r.cpuAllowed() && c.HasCPUBilateral
	}, PathBilateralCPU},
}

// SelectBilateral picks the execution path for a bilateral filter request
func SelectBilateral(r BilateralRequest, c CapabilitySet) Path {
	for _, rule:=range bilateralChain {
		if rule.when(r, c) {
			log.Printf("bilateral: %s -> %v\n", rule.name, rule.path)
			return rule.path
		}
	}
	log.Printf("bilateral: no viable backend\n")
	return PathNone
}

// SelectSideMerge picks how side box blur folds its directional
// intermediates: the n-way closest-merge program when an expression engine
// exists, else the iterative pairwise fallback. The fallback's sequential
// two-way folding is not equivalent to the n-way rule; it is the documented
// degraded path, kept as is.
func SelectSideMerge(c CapabilitySet) Path {
	if c.HasExprEngine {
		log.Printf("side_box_blur merge: expression engine -> %v\n", PathMergeExpr)
		return PathMergeExpr
	}
	log.Printf("side_box_blur merge: pairwise fold -> %v\n", PathMergeFold)
	return PathMergeFold
}
