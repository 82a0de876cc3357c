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
	"runtime"

	"github.com/mlnoga/vblur/internal/expr"
	"github.com/mlnoga/vblur/internal/frame"
)

// The in-process expression engine: evaluates compiled programs through the
// reference interpreter, parallelized across row batches. Expression
// programs are pure per-pixel functions, so disjoint row ranges evaluate
// concurrently without locking.
type exprEngine struct{}

func (e exprEngine) EvalExpr(p *expr.Program, srcs []*frame.Frame, planes []bool) (*frame.Frame, error) {
	if len(srcs)!=p.NumSrcs {
		return nil, fmt.Errorf("expr engine: program wants %d sources, got %d", p.NumSrcs, len(srcs))
	}
	first:=srcs[0]
	for i, s:=range srcs {
		if s.Width!=first.Width || s.Height!=first.Height || s.NumPlanes()!=first.NumPlanes() {
			return nil, fmt.Errorf("expr engine: source %d shape mismatch", i)
		}
	}

	dst:=frame.NewLike(first)
	for plane:=0; plane<first.NumPlanes(); plane++ {
		if planes!=nil && (plane>=len(planes) || !planes[plane]) {
			copy(dst.Planes[plane], first.Planes[plane])
			continue
		}
		evalPlane(p, srcs, plane, dst)
	}
	return dst, nil
}

// Evaluates one plane in row batches, limiting parallelism to the CPU count
func evalPlane(p *expr.Program, srcs []*frame.Frame, plane int, dst *frame.Frame) {
	numBatches:=8 * runtime.NumCPU()
	batchRows:=(dst.Height + numBatches - 1) / numBatches
	if batchRows<1 { batchRows=1 }

	sem:=make(chan bool, runtime.NumCPU())
	for y0:=0; y0<dst.Height; y0+=batchRows {
		y1:=y0 + batchRows
		if y1>dst.Height { y1=dst.Height }

		sem <- true
		go func(y0, y1 int) {
			expr.RunRows(p, srcs, plane, y0, y1, dst)
			<-sem
		}(y0, y1)
	}
	for i:=0; i<cap(sem); i++ { // wait for goroutines to finish
		sem <- true
	}
}
