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

import "math"

// ConvertDepth converts a frame to the target sample format. Upward integer
// conversions are lossless left shifts; downward conversions use
// round-half-away-from-zero and clamp into the target range. Returns the
// input frame unchanged if the formats already match.
func ConvertDepth(f *Frame, target SampleFormat) *Frame {
	if f.Format==target { return f }

	out:=New(f.Width, f.Height, len(f.Planes), target)
	convert:=sampleConverter(f.Format, target)
	for i, p:=range f.Planes {
		po:=out.Planes[i]
		for j, v:=range p {
			po[j]=convert(v)
		}
	}
	return out
}

func sampleConverter(from, to SampleFormat) func(float32) float32 {
	switch {
	case from.Float && to.Float:
		return func(v float32) float32 { return v }
	case from.Float && !to.Float:
		max:=to.MaxValue()
		return func(v float32) float32 { return to.ClampSample(roundHalfAway(v * max)) }
	case !from.Float && to.Float:
		inv:=1/from.MaxValue()
		return func(v float32) float32 { return v * inv }
	case to.Bits>=from.Bits:
		mult:=float32(uint32(1) << uint(to.Bits-from.Bits)) // lossless upward
		return func(v float32) float32 { return v * mult }
	default:
		div:=float32(uint32(1) << uint(from.Bits-to.Bits))
		return func(v float32) float32 { return to.ClampSample(roundHalfAway(v / div)) }
	}
}

func roundHalfAway(v float32) float32 {
	return float32(math.Round(float64(v)))
}
