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


package expr

import (
	"fmt"

	"github.com/mlnoga/vblur"
	"github.com/mlnoga/vblur/internal/kernel"
)

// Convolution compiles a kernel into a single-source per-pixel program:
// per tap a load/multiply/accumulate, then the final scale divide and
// optional clamp. Horizontal and Vertical yield separate 1D programs which
// callers run as sequential passes; Square fuses the kernel with itself
// into one 2D outer-product program. HV is not compiled fused.
func Convolution(k *kernel.Kernel, mode kernel.ConvMode) (*Program, error) {
	b:=newBuilder(1)

	switch mode {
	case kernel.Horizontal:
		accumulate(b, k, func(o int) (int, int) { return o, 0 })
	case kernel.Vertical:
		accumulate(b, k, func(o int) (int, int) { return 0, o })
	case kernel.Square:
		first:=true
		for _, ty:=range k.Taps {
			for _, tx:=range k.Taps {
				b.src(0, tx.Offset, ty.Offset)
				b.c(tx.Weight*ty.Weight)
				b.op(OpMul)
				if !first { b.op(OpAdd) }
				first=false
			}
		}
	default:
		return nil, fmt.Errorf("expr convolution: mode %v compiles as separate h and v passes: %w",
			mode, vblur.ErrUnsupportedMode)
	}

	scale:=k.Scale
	if mode==kernel.Square { scale*=k.Scale }
	if scale!=1 {
		b.c(scale)
		b.op(OpDiv)
	}
	if k.Clamp!=nil {
		b.c(k.Clamp[0])
		b.c(k.Clamp[1])
		b.op(OpClamp)
	}
	return b.finish()
}

func accumulate(b *builder, k *kernel.Kernel, place func(o int) (dx, dy int)) {
	for i, t:=range k.Taps {
		dx, dy:=place(t.Offset)
		b.src(0, dx, dy)
		b.c(t.Weight)
		b.op(OpMul)
		if i>0 { b.op(OpAdd) }
	}
}

// MedianClip compiles the sorting-network median of the given radius and
// mode. The program gathers the neighborhood without its center, sorts it,
// keeps the two central values in min/max registers, and clips the original
// pixel into [min,max] rather than emitting the raw median, matching the
// edge-preserving clip semantics of the callers.
func MedianClip(radius int, mode kernel.ConvMode) (*Program, error) {
	if radius<1 {
		return nil, fmt.Errorf("expr median: radius %d: %w", radius, vblur.ErrInvalidParameter)
	}
	offsets:=neighborhood(radius, mode)
	if len(offsets)==0 {
		return nil, fmt.Errorf("expr median: mode %v: %w", mode, vblur.ErrUnsupportedMode)
	}

	// Index structure of the clip: rb=len+1 values including the center,
	// the two central sorted values become the clip bounds.
	st:=len(offsets)
	rb:=st + 1
	sp:=rb/2 - 1
	dp:=st - 2

	b:=newBuilder(1)
	for _, o:=range offsets {
		b.src(0, o[0], o[1])
	}
	b.opN(OpSort, st)
	b.opN(OpSwap, sp)
	b.store("min")
	b.opN(OpSwap, sp)
	b.store("max")
	if dp>0 { b.opN(OpDrop, dp) }
	b.src(0, 0, 0)
	b.load("min")
	b.load("max")
	b.op(OpClamp)
	return b.finish()
}

// Neighborhood offsets of the given radius, excluding the center: a 1D row
// or column, the plus-shaped union of both, or the full square.
func neighborhood(radius int, mode kernel.ConvMode) [][2]int {
	var offsets [][2]int
	switch mode {
	case kernel.Square:
		for dy:=-radius; dy<=radius; dy++ {
			for dx:=-radius; dx<=radius; dx++ {
				if dx==0 && dy==0 { continue }
				offsets=append(offsets, [2]int{dx, dy})
			}
		}
	case kernel.Horizontal, kernel.Vertical, kernel.HV:
		for d:=-radius; d<=radius; d++ {
			if d==0 { continue }
			if mode!=kernel.Vertical {
				offsets=append(offsets, [2]int{d, 0})
			}
		}
		for d:=-radius; d<=radius; d++ {
			if d==0 { continue }
			if mode!=kernel.Horizontal {
				offsets=append(offsets, [2]int{0, d})
			}
		}
	}
	return offsets
}

// MergeAgreement compiles the two-candidate agreement rule over sources
// (x, a, b): with D1=x-a and D2=x-b, the program yields a when D1 and D2
// share a sign and |D1|<|D2|, and b otherwise. Sign disagreement means the
// candidates bracket the pixel; neither is trusted and the rule leans
// toward the second candidate. The asymmetry is intentional.
func MergeAgreement() (*Program, error) {
	b:=newBuilder(3)
	b.src(0, 0, 0)
	b.src(1, 0, 0)
	b.op(OpSub)
	b.store("D1")
	b.src(0, 0, 0)
	b.src(2, 0, 0)
	b.op(OpSub)
	b.store("D2")

	b.load("D1")
	b.load("D2")
	b.op(OpXor)
	b.src(2, 0, 0) // disagreement: second candidate
	b.load("D1")
	b.op(OpAbs)
	b.load("D2")
	b.op(OpAbs)
	b.op(OpLt)
	b.src(1, 0, 0)
	b.src(2, 0, 0)
	b.op(OpSelect)
	b.op(OpSelect)
	return b.finish()
}

// LimitResidual compiles the residual variant of the agreement rule used by
// soft-blur-reduce, over sources (x, a) where x is the high-frequency
// residual and a its re-blur. The zero-difference point neutral substitutes
// for the arbiter: with D1=x-a and D2=x-neutral, the program yields
// D1+neutral when D1 and D2 share a sign and |D1|<|D2|, x when they share
// a sign and |D1|>=|D2|, and neutral on sign disagreement, so the caller's
// final subtraction leaves those pixels untouched.
func LimitResidual(neutral float64) (*Program, error) {
	b:=newBuilder(2)
	b.src(0, 0, 0)
	b.src(1, 0, 0)
	b.op(OpSub)
	b.store("D1")
	b.src(0, 0, 0)
	b.c(neutral)
	b.op(OpSub)
	b.store("D2")

	b.load("D1")
	b.load("D2")
	b.op(OpXor)
	b.c(neutral) // disagreement: cancel the residual
	b.load("D1")
	b.op(OpAbs)
	b.load("D2")
	b.op(OpAbs)
	b.op(OpLt)
	b.load("D1")
	b.c(neutral)
	b.op(OpAdd)
	b.src(0, 0, 0)
	b.op(OpSelect)
	b.op(OpSelect)
	return b.finish()
}

// MergeClosest compiles the n-way minimum-distance-to-original fold over
// sources (x, c1..cn): a cumulative register folds the candidates pairwise,
// each step keeping whichever value lies closer to x, ties favoring the
// newer candidate. With comp, the result becomes x-closest+comp, the
// difference-based merge used by side box blur. Source n+1 is then comp.
func MergeClosest(n int, withComp bool) (*Program, error) {
	if n<2 {
		return nil, fmt.Errorf("expr merge: %d candidates: %w", n, vblur.ErrInvalidParameter)
	}
	numSrcs:=n + 1
	if withComp { numSrcs++ }
	b:=newBuilder(numSrcs)

	if withComp {
		b.src(0, 0, 0)
	}

	cum:=func() { b.src(1, 0, 0) }
	for i:=2; i<=n; i++ {
		cum()
		b.src(0, 0, 0)
		b.op(OpSub)
		b.op(OpAbs)
		b.src(i, 0, 0)
		b.src(0, 0, 0)
		b.op(OpSub)
		b.op(OpAbs)
		b.op(OpLt)
		cum()
		b.src(i, 0, 0)
		b.op(OpSelect)
		if i!=n {
			b.store("C")
			cum=func() { b.load("C") }
		}
	}

	if withComp {
		b.op(OpSub)
		b.src(n+1, 0, 0)
		b.op(OpAdd)
	}
	return b.finish()
}
