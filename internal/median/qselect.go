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


package median

// Partitions a slice of float32 with the middle pivot element, and returns
// the pivot index. Values less than the pivot are moved left of the pivot,
// those greater are moved right. Slice must not contain IEEE NaN
func partition(a []float32) int {
    left, right:=0, len(a)-1
    mid:=(left+right)>>1
    pivot:=a[mid]
    l:=left - 1
    r:=right + 1
    for {
        for {
            l++
            if a[l]>=pivot { break }
        }
        for {
            r--
            if a[r]<=pivot { break }
        }
        if l>=r { return r }
        a[l], a[r]=a[r], a[l]
    }
}

// Selects the kth lowest element, 1-based. Partially reorders the slice.
// Slice must not contain IEEE NaN
func qselect(a []float32, k int) float32 {
    for len(a)>1 {
        index:=partition(a)
        if k<=index+1 {
            a=a[:index+1]
        } else {
            a=a[index+1:]
            k-=index + 1
        }
    }
    return a[0]
}
