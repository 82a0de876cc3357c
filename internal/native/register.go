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
	"github.com/mlnoga/vblur/internal/backend"
)

// Registers the CPU engines this build provides. The GPU bilateral slots
// stay empty: no GPU runtime is linked into this build, and their absence
// is a normal selection signal, not an error.
func init() {
	backend.RegisterExprEngine(exprEngine{})
	backend.RegisterScaleEngine(scaleGauss{})
	backend.RegisterBilateralCPU(bilateralCPU{})
	backend.RegisterTemporalMedian(temporalMedian{})
	backend.RegisterTemporalSoften(temporalSoften{})
}
