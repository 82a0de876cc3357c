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
	"strconv"
	"strings"
)

// Source variable names in the conventional order x, y, z, a..w
const srcVars="xyzabcdefghijklmnopqrstuvw"

// Serialize renders the program as postfix text for an external expression
// engine. The in-process interpreter never parses this form back; it exists
// purely as an interchange surface.
func Serialize(p *Program) string {
	b:=strings.Builder{}
	for i, op:=range p.Ops {
		if i>0 { b.WriteByte(' ') }
		b.WriteString(serializeOp(p, op))
	}
	return b.String()
}

func serializeOp(p *Program, op Op) string {
	switch op.Code {
	case OpLoadSrc:
		v:=srcVar(op.Src)
		if op.DX==0 && op.DY==0 { return v }
		return fmt.Sprintf("%s[%d,%d]", v, op.DX, op.DY)
	case OpLoadConst:
		return strconv.FormatFloat(op.Val, 'g', -1, 64)
	case OpLoadReg:
		return p.RegNames[op.Reg] + "@"
	case OpStoreReg:
		return p.RegNames[op.Reg] + "!"
	case OpDup, OpSwap, OpDrop, OpSort:
		return fmt.Sprintf("%s%d", op.Code, op.N)
	default:
		return op.Code.String()
	}
}

func srcVar(i int) string {
	if i<len(srcVars) {
		return string(srcVars[i])
	}
	return fmt.Sprintf("src%d", i)
}
