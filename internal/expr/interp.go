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
	"math"

	"github.com/mlnoga/vblur/internal/frame"
)

// Run evaluates the program once per pixel over the selected planes of the
// source frames and returns a new output frame shaped like the first
// source. Unselected planes are copied from the first source unchanged.
// Edge accesses mirror back into the plane. For integer output formats the
// result is rounded and clamped into the sample range on store.
func Run(p *Program, srcs []*frame.Frame, planes []bool) (*frame.Frame, error) {
	if len(srcs)!=p.NumSrcs {
		return nil, fmt.Errorf("expr: program wants %d sources, got %d", p.NumSrcs, len(srcs))
	}
	first:=srcs[0]
	for i, s:=range srcs {
		if s.Width!=first.Width || s.Height!=first.Height || s.NumPlanes()!=first.NumPlanes() {
			return nil, fmt.Errorf("expr: source %d is %dx%d with %d planes, want %dx%d with %d",
				i, s.Width, s.Height, s.NumPlanes(), first.Width, first.Height, first.NumPlanes())
		}
	}

	dst:=frame.NewLike(first)
	for plane:=0; plane<first.NumPlanes(); plane++ {
		if planes!=nil && (plane>=len(planes) || !planes[plane]) {
			copy(dst.Planes[plane], first.Planes[plane])
			continue
		}
		RunRows(p, srcs, plane, 0, first.Height, dst)
	}
	return dst, nil
}

// RunRows evaluates the program for rows y0..y1-1 of one plane, storing
// into dst. Pure function of the source neighborhoods; safe to invoke
// concurrently for disjoint row ranges of the same destination.
func RunRows(p *Program, srcs []*frame.Frame, plane, y0, y1 int, dst *frame.Frame) {
	width, height:=dst.Width, dst.Height
	out:=dst.Planes[plane]
	isFloat:=dst.Format.Float
	maxVal:=float64(dst.Format.MaxValue())

	stack:=make([]float64, 0, 64)
	regs:=make([]float64, len(p.RegNames))

	for y:=y0; y<y1; y++ {
		for x:=0; x<width; x++ {
			stack=stack[:0]
			for _, op:=range p.Ops {
				switch op.Code {
				case OpLoadSrc:
					sx:=reflect(width, x+op.DX)
					sy:=reflect(height, y+op.DY)
					stack=append(stack, float64(srcs[op.Src].Planes[plane][sy*width+sx]))
				case OpLoadConst:
					stack=append(stack, op.Val)
				case OpLoadReg:
					stack=append(stack, regs[op.Reg])
				case OpStoreReg:
					regs[op.Reg]=stack[len(stack)-1]
					stack=stack[:len(stack)-1]
				case OpAdd:
					a, b:=pop2(&stack)
					stack=append(stack, a+b)
				case OpSub:
					a, b:=pop2(&stack)
					stack=append(stack, a-b)
				case OpMul:
					a, b:=pop2(&stack)
					stack=append(stack, a*b)
				case OpDiv:
					a, b:=pop2(&stack)
					stack=append(stack, a/b)
				case OpAbs:
					stack[len(stack)-1]=math.Abs(stack[len(stack)-1])
				case OpMin:
					a, b:=pop2(&stack)
					stack=append(stack, math.Min(a, b))
				case OpMax:
					a, b:=pop2(&stack)
					stack=append(stack, math.Max(a, b))
				case OpLt:
					a, b:=pop2(&stack)
					stack=append(stack, bool2f(a<b))
				case OpXor:
					a, b:=pop2(&stack)
					stack=append(stack, bool2f((a>0)!=(b>0)))
				case OpSelect:
					bv:=stack[len(stack)-1]
					av:=stack[len(stack)-2]
					cond:=stack[len(stack)-3]
					stack=stack[:len(stack)-3]
					if cond>0 {
						stack=append(stack, av)
					} else {
						stack=append(stack, bv)
					}
				case OpClamp:
					hi:=stack[len(stack)-1]
					lo:=stack[len(stack)-2]
					v:=stack[len(stack)-3]
					stack=stack[:len(stack)-3]
					if v<lo { v=lo }
					if v>hi { v=hi }
					stack=append(stack, v)
				case OpDup:
					stack=append(stack, stack[len(stack)-1-op.N])
				case OpSwap:
					i:=len(stack) - 1
					stack[i], stack[i-op.N]=stack[i-op.N], stack[i]
				case OpDrop:
					stack=stack[:len(stack)-op.N]
				case OpSort:
					sortDesc(stack[len(stack)-op.N:])
				}
			}
			v:=stack[0]
			if !isFloat {
				v=math.Floor(v + 0.5)
				if v<0 { v=0 }
				if v>maxVal { v=maxVal }
			}
			out[y*width+x]=float32(v)
		}
	}
}

func pop2(stack *[]float64) (a, b float64) {
	s:=*stack
	a, b=s[len(s)-2], s[len(s)-1]
	*stack=s[:len(s)-2]
	return a, b
}

func bool2f(b bool) float64 {
	if b { return 1 }
	return 0
}

// Sorts the slice descending, so that the stack top (the slice end) holds
// the smallest value. Windows are small; insertion sort suffices.
func sortDesc(a []float64) {
	for i:=1; i<len(a); i++ {
		v:=a[i]
		j:=i - 1
		for j>=0 && a[j]<v {
			a[j+1]=a[j]
			j--
		}
		a[j+1]=v
	}
}

// Reflects out of bounds coordinates back into [0, size-1]
func reflect(size, x int) int {
	if x<0 {
		return -x - 1
	}
	if x>=size {
		return 2*size - x - 1
	}
	return x
}
