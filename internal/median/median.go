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


// Package median provides small fixed-size median networks and a
// quickselect fallback for arbitrary window sizes.
package median

import "math"

// Filter3x3 applies a 3x3 median filter to a plane of the given dimensions,
// mirroring samples at the borders, and stores the result in output.
// Output and data must not alias.
func Filter3x3(output, data []float32, width, height int) {
    var gathered [9]float32
    for y:=0; y<height; y++ {
        for x:=0; x<width; x++ {
            j:=0
            for dy:=-1; dy<=1; dy++ {
                sy:=reflect(height, y+dy)
                for dx:=-1; dx<=1; dx++ {
                    sx:=reflect(width, x+dx)
                    gathered[j]=data[sy*width+sx]
                    j++
                }
            }
            output[y*width+x]=OfSlice9(gathered[:])
        }
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

// OfSlice9 calculates the median of a float32 slice of length nine using an
// optimal 19-exchange median network. Modifies the elements in place.
// From https://stackoverflow.com/questions/45453537/optimal-9-element-sorting-network-that-reduces-to-an-optimal-median-of-9-network
// Slice must not contain IEEE NaN
func OfSlice9(a []float32) float32 {
    if a[0]>a[1] { a[0], a[1] = a[1], a[0] }
    if a[3]>a[4] { a[3], a[4] = a[4], a[3] }
    if a[6]>a[7] { a[6], a[7] = a[7], a[6] }
    if a[1]>a[2] { a[1], a[2] = a[2], a[1] }
    if a[4]>a[5] { a[4], a[5] = a[5], a[4] }
    if a[7]>a[8] { a[7], a[8] = a[8], a[7] }
    if a[0]>a[1] { a[0], a[1] = a[1], a[0] }
    if a[3]>a[4] { a[3], a[4] = a[4], a[3] }
    if a[6]>a[7] { a[6], a[7] = a[7], a[6] }
    if a[0]>a[3] { a[3]       = a[0]       }
    if a[3]>a[6] { a[6]       = a[3]       }
    if a[1]>a[4] { a[1], a[4] = a[4], a[1] }
    if a[4]>a[7] { a[4]       = a[7]       }
    if a[1]>a[4] { a[4]       = a[1]       }
    if a[5]>a[8] { a[5]       = a[8]       }
    if a[2]>a[5] { a[2]       = a[5]       }
    if a[2]>a[4] { a[2], a[4] = a[4], a[2] }
    if a[4]>a[6] { a[4]       = a[6]       }
    if a[2]>a[4] { a[4]       = a[2]       }
    return a[4]
}

// Of calculates the median of a float32 slice of any length.
// Modifies the elements in place. Slice must not contain IEEE NaN
func Of(a []float32) float32 {
    if len(a)==0 { return float32(math.NaN()) }
    if len(a)==9 { return OfSlice9(a) }
    return qselect(a, (len(a)>>1)+1)
}
