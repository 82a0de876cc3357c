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
    "github.com/mlnoga/vblur/internal/frame"
    "github.com/mlnoga/vblur/internal/median"
)

// Median3x3 applies the direct 3x3 median primitive to the selected planes
func Median3x3(f *frame.Frame, planes []bool) *frame.Frame {
    out:=frame.NewLike(f)
    for i, src:=range f.Planes {
        if planes!=nil && (i>=len(planes) || !planes[i]) {
            copy(out.Planes[i], src)
            continue
        }
        median.Filter3x3(out.Planes[i], src, f.Width, f.Height)
    }
    return out
}
