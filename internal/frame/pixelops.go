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


package frame

// Difference and merge operations on frames, offset by the format's
// difference-neutral value and clamped to the sample range for integer
// formats. Planes flags select which planes participate; unselected planes
// pass through from the first operand unchanged. A nil flag slice selects
// all planes.

// MakeDiff returns a-b+neutral per selected plane
func MakeDiff(a, b *Frame, planes []bool) *Frame {
	out:=NewLike(a)
	neutral:=a.Format.Neutral()
	for i:=range a.Planes {
		if !planeSelected(planes, i) {
			copy(out.Planes[i], a.Planes[i])
			continue
		}
		pa, pb, po:=a.Planes[i], b.Planes[i], out.Planes[i]
		for j, v:=range pa {
			po[j]=a.Format.ClampSample(v-pb[j]+neutral)
		}
	}
	return out
}

// MergeDiff returns a+d-neutral per selected plane, the inverse of MakeDiff
func MergeDiff(a, d *Frame, planes []bool) *Frame {
	out:=NewLike(a)
	neutral:=a.Format.Neutral()
	for i:=range a.Planes {
		if !planeSelected(planes, i) {
			copy(out.Planes[i], a.Planes[i])
			continue
		}
		pa, pd, po:=a.Planes[i], d.Planes[i], out.Planes[i]
		for j, v:=range pa {
			po[j]=a.Format.ClampSample(v+pd[j]-neutral)
		}
	}
	return out
}

// Clamps a sample into the representable range of the format.
// Float formats pass values through unchanged; difference frames may
// legitimately carry values outside [0,1].
func (sf SampleFormat) ClampSample(v float32) float32 {
	if sf.Float { return v }
	if v<0 { return 0 }
	if max:=sf.MaxValue(); v>max { return max }
	return v
}

func planeSelected(planes []bool, i int) bool {
	return planes==nil || (i<len(planes) && planes[i])
}
