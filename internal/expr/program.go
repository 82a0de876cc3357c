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


// Package expr compiles convolution kernels and algebraic pixel relations
// into stack-based per-pixel programs, and provides the reference
// interpreter that evaluates them. Programs are backend-agnostic: an
// accelerated evaluator may execute them instead of the interpreter, and a
// textual serializer targets external expression engines.
package expr

import "fmt"

// Operation codes of the per-pixel stack machine
type OpCode uint8

const (
	OpLoadSrc   OpCode = iota // push source-pixel Src at relative offset (DX,DY)
	OpLoadConst               // push constant Val
	OpLoadReg                 // push register Reg
	OpStoreReg                // pop into register Reg
	OpAdd                     // pop b,a; push a+b
	OpSub                     // pop b,a; push a-b
	OpMul                     // pop b,a; push a*b
	OpDiv                     // pop b,a; push a/b
	OpAbs                     // pop a; push |a|
	OpMin                     // pop b,a; push min(a,b)
	OpMax                     // pop b,a; push max(a,b)
	OpLt                      // pop b,a; push 1 if a<b else 0
	OpXor                     // pop b,a; push 1 if exactly one of a,b is >0
	OpSelect                  // pop b,a,cond; push a if cond>0 else b
	OpClamp                   // pop hi,lo,x; push x clamped into [lo,hi]
	OpDup                     // push a copy of the stack slot N below the top
	OpSwap                    // swap the top with the slot N below it
	OpDrop                    // pop N values
	OpSort                    // sort the top N slots ascending, smallest on top
)

// One operation of a per-pixel program
type Op struct {
	Code   OpCode
	Src    int     // source frame index for OpLoadSrc
	DX, DY int     // relative pixel offset for OpLoadSrc
	Val    float64 // constant for OpLoadConst
	Reg    int     // register slot for OpLoadReg/OpStoreReg
	N      int     // slot count for OpDup/OpSwap/OpDrop/OpSort
}

// An ordered per-pixel program over named registers and stack slots.
// Evaluated independently for every pixel, with no cross-pixel state;
// immutable and freely shareable across parallel evaluations once built.
type Program struct {
	Ops      []Op
	NumSrcs  int      // number of input frames referenced
	RegNames []string // register slot names, for serialization
}

// Maximum stack and register count a program may use
const maxSlots = 1024

// Validate simulates the program and checks its invariants: the stack never
// underflows, every register is written before its first read, and the
// stack depth after full evaluation is exactly one.
func (p *Program) Validate() error {
	depth:=0
	written:=make([]bool, len(p.RegNames))
	for i, op:=range p.Ops {
		pops, pushes:=op.stackEffect()
		if depth<pops {
			return fmt.Errorf("expr: op %d (%s) pops %d of %d stacked values", i, op.Code, pops, depth)
		}
		switch op.Code {
		case OpLoadSrc:
			if op.Src<0 || op.Src>=p.NumSrcs {
				return fmt.Errorf("expr: op %d reads source %d of %d", i, op.Src, p.NumSrcs)
			}
		case OpLoadReg:
			if !written[op.Reg] {
				return fmt.Errorf("expr: op %d reads register %s before first write", i, p.RegNames[op.Reg])
			}
		case OpStoreReg:
			written[op.Reg]=true
		case OpDup, OpSwap:
			if depth<op.N+1 {
				return fmt.Errorf("expr: op %d (%s %d) exceeds stack depth %d", i, op.Code, op.N, depth)
			}
		case OpSort:
			if depth<op.N {
				return fmt.Errorf("expr: op %d sorts %d of %d stacked values", i, op.N, depth)
			}
		}
		depth+=pushes - pops
		if depth>maxSlots {
			return fmt.Errorf("expr: op %d exceeds %d stack slots", i, maxSlots)
		}
	}
	if depth!=1 {
		return fmt.Errorf("expr: final stack depth %d, want 1", depth)
	}
	return nil
}

func (op Op) stackEffect() (pops, pushes int) {
	switch op.Code {
	case OpLoadSrc, OpLoadConst, OpLoadReg, OpDup:
		return 0, 1
	case OpStoreReg:
		return 1, 0
	case OpAdd, OpSub, OpMul, OpDiv, OpMin, OpMax, OpLt, OpXor:
		return 2, 1
	case OpSelect, OpClamp:
		return 3, 1
	case OpAbs:
		return 1, 1
	case OpDrop:
		return op.N, 0
	case OpSwap, OpSort:
		return 0, 0
	}
	return 0, 0
}

func (c OpCode) String() string {
	switch c {
	case OpLoadSrc:
		return "load"
	case OpLoadConst:
		return "const"
	case OpLoadReg:
		return "load@"
	case OpStoreReg:
		return "store!"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpAbs:
		return "abs"
	case OpMin:
		return "min"
	case OpMax:
		return "max"
	case OpLt:
		return "<"
	case OpXor:
		return "xor"
	case OpSelect:
		return "?"
	case OpClamp:
		return "clip"
	case OpDup:
		return "dup"
	case OpSwap:
		return "swap"
	case OpDrop:
		return "drop"
	case OpSort:
		return "sort"
	}
	return fmt.Sprintf("OpCode(%d)", uint8(c))
}

// Incremental program builder with register name interning
type builder struct {
	p    Program
	regs map[string]int
}

func newBuilder(numSrcs int) *builder {
	return &builder{p: Program{NumSrcs: numSrcs}, regs: map[string]int{}}
}

func (b *builder) emit(op Op)            { b.p.Ops=append(b.p.Ops, op) }
func (b *builder) src(s, dx, dy int)     { b.emit(Op{Code: OpLoadSrc, Src: s, DX: dx, DY: dy}) }
func (b *builder) c(v float64)           { b.emit(Op{Code: OpLoadConst, Val: v}) }
func (b *builder) op(code OpCode)        { b.emit(Op{Code: code}) }
func (b *builder) opN(code OpCode, n int){ b.emit(Op{Code: code, N: n}) }

func (b *builder) reg(name string) int {
	if id, ok:=b.regs[name]; ok { return id }
	id:=len(b.p.RegNames)
	b.p.RegNames=append(b.p.RegNames, name)
	b.regs[name]=id
	return id
}

func (b *builder) store(name string) { b.emit(Op{Code: OpStoreReg, Reg: b.reg(name)}) }
func (b *builder) load(name string)  { b.emit(Op{Code: OpLoadReg, Reg: b.reg(name)}) }

func (b *builder) finish() (*Program, error) {
	p:=b.p
	if err:=p.Validate(); err!=nil { return nil, err }
	return &p, nil
}
