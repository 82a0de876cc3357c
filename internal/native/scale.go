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
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/mlnoga/vblur/internal/frame"
	"github.com/mlnoga/vblur/internal/kernel"
)

// Scaling-engine Gaussian: resamples each plane at unchanged size through a
// Gaussian resampling kernel, which at scale 1:1 convolves with the kernel
// sampled at integer offsets. Handles the large tap counts the direct
// convolution primitive cannot. Accepts integer frames up to 16 bits;
// shallower depths are upshifted losslessly and rounded back after.
type scaleGauss struct{}

func (scaleGauss) GaussBlur(f *frame.Frame, sigma float64, taps int, mode kernel.ConvMode, planes []bool) (*frame.Frame, error) {
	if f.Format.Float || f.Format.Bits>16 {
		return nil, fmt.Errorf("scale engine: unsupported format %v, want integer up to 16 bits", f.Format)
	}
	if mode==kernel.Square {
		return nil, fmt.Errorf("scale engine: square mode not resampled separably")
	}

	k:=&xdraw.Kernel{
		Support: float64(taps) + 0.5,
		At: func(t float64) float64 {
			return math.Exp(-t * t / (2 * sigma * sigma))
		},
	}
	shift:=uint(16 - f.Format.Bits)

	out:=frame.NewLike(f)
	for plane:=0; plane<f.NumPlanes(); plane++ {
		src, dst:=f.Planes[plane], out.Planes[plane]
		if planes!=nil && (plane>=len(planes) || !planes[plane]) {
			copy(dst, src)
			continue
		}
		switch mode {
		case kernel.HV:
			resampleStrip(k, src, dst, f.Width, f.Height, shift, f.Format)
		case kernel.Horizontal:
			for y:=0; y<f.Height; y++ {
				row:=src[y*f.Width : (y+1)*f.Width]
				resampleStrip(k, row, dst[y*f.Width:(y+1)*f.Width], f.Width, 1, shift, f.Format)
			}
		case kernel.Vertical:
			col:=make([]float32, f.Height)
			res:=make([]float32, f.Height)
			for x:=0; x<f.Width; x++ {
				for y:=0; y<f.Height; y++ {
					col[y]=src[y*f.Width+x]
				}
				resampleStrip(k, col, res, 1, f.Height, shift, f.Format)
				for y:=0; y<f.Height; y++ {
					dst[y*f.Width+x]=res[y]
				}
			}
		}
	}
	return out, nil
}

// Resamples one contiguous strip of samples at unchanged size
func resampleStrip(k *xdraw.Kernel, src, dst []float32, width, height int, shift uint, format frame.SampleFormat) {
	rect:=image.Rect(0, 0, width, height)
	srcImg:=image.NewGray16(rect)
	for i, v:=range src {
		u:=uint32(v) << shift
		srcImg.Pix[2*i]=uint8(u >> 8)
		srcImg.Pix[2*i+1]=uint8(u)
	}
	dstImg:=image.NewGray16(rect)
	k.Scale(dstImg, rect, srcImg, rect, xdraw.Src, nil)

	down:=float64(uint32(1) << shift)
	for i:=range dst {
		u:=uint32(dstImg.Pix[2*i])<<8 | uint32(dstImg.Pix[2*i+1])
		dst[i]=storeSample(float64(u)/down, format)
	}
}
