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

package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/valyala/fastrand"

	"github.com/mlnoga/vblur/internal/backend"
	"github.com/mlnoga/vblur/internal/blur"
	"github.com/mlnoga/vblur/internal/frame"
	"github.com/mlnoga/vblur/internal/kernel"
	"github.com/mlnoga/vblur/internal/log"
)

const version = "0.1.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")

var in     = flag.String("in", "", "read input from PNG `file`, blank for a generated noise frame")
var out    = flag.String("out", "out.png", "save output as 8bit grayscale PNG to `file`")
var diff   = flag.String("diff", "", "save false-color difference against the input as PNG to `file`")

var width  = flag.Int("width",  1024, "width of the generated noise frame")
var height = flag.Int("height", 1024, "height of the generated noise frame")
var bits   = flag.Int("bits",   16,   "bit depth of the generated noise frame, 8..32")
var float  = flag.Bool("float", false,"generate floating point samples")
var seed   = flag.Uint("seed",  0,    "noise seed, 0=use the current time")

var op     = flag.String("op",     "box", "operator, one of box, sidebox, gauss, minblur, sbr, median, bilateral, flux")
var radius = flag.Int("radius",    1,     "blur radius in pixels")
var passes = flag.Int("passes",    1,     "box blur passes")
var sigma  = flag.Float64("sigma", 1.0,   "gaussian or bilateral spatial standard deviation")
var sigmaR = flag.Float64("sigmaR",0.02,  "bilateral range standard deviation, fraction of full scale")
var taps   = flag.Int("taps",      0,     "one-sided gaussian tap count, 0=derive from sigma")
var mode   = flag.String("mode",   "hv",  "convolution mode, one of h, v, hv, square")
var planes = flag.String("planes", "",    "comma-separated plane indices, blank for all")
var inverse= flag.Bool("inverse",  false, "sidebox: return the raw closest candidate")
var thresh = flag.Int("threshold", 7,     "flux: temporal averaging threshold on the 8 bit scale")
var scene  = flag.Int("scenechange", 0,   "flux: scene change threshold, 0=off")
var frames = flag.Int("frames",    5,     "flux: number of noise frames in the sequence")

func main() {
	flag.Usage=func() {
		fmt.Fprintf(os.Stderr, `vblur %s: blur and smoothing operators for image planes

Usage: %s [-flag value] ...

Flags:
`, version, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	log.SetWriter(os.Stderr)

	if *cpuprofile!="" {
		f, err:=os.Create(*cpuprofile)
		if err!=nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(-1)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	log.Printf("vblur %s, backend capabilities %v\n", version, backend.Current())

	input, err:=loadOrGenerate()
	if err!=nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(-1)
	}

	sel, err:=parsePlanes(*planes)
	if err!=nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(-1)
	}
	convMode, err:=parseMode(*mode)
	if err!=nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(-1)
	}

	start:=time.Now()
	result, err:=runOperator(input, convMode, sel)
	if err!=nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(-1)
	}
	log.Printf("%s radius %d on %dx%dx%d %v took %v\n", *op, *radius,
		input.Width, input.Height, input.NumPlanes(), input.Format, time.Since(start))

	if err:=savePNG(*out, result); err!=nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(-1)
	}
	if *diff!="" {
		if err:=saveDiffPNG(*diff, input, result); err!=nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(-1)
		}
	}
}

func runOperator(input *frame.Frame, convMode kernel.ConvMode, sel []int) (*frame.Frame, error) {
	switch *op {
	case "box":
		return blur.BoxBlur(input, *radius, *passes, convMode, sel)
	case "sidebox":
		return blur.SideBoxBlur(input, *radius, sel, *inverse)
	case "gauss":
		return blur.GaussBlur(input, *sigma, *taps, convMode, sel)
	case "minblur":
		return blur.MinBlur(input, *radius, convMode, sel)
	case "sbr":
		return blur.SoftBlurReduce(input, *radius, convMode, sel)
	case "median":
		return blur.MedianBlur(input, *radius, convMode, sel)
	case "bilateral":
		return blur.Bilateral(input, []float64{*sigma}, []float64{*sigmaR}, nil, nil, sel)
	case "flux":
		seq:=make([]*frame.Frame, *frames)
		rng:=newRNG()
		for i:=range seq {
			seq[i]=frame.NewLike(input)
			seq[i].FillNoise(rng)
		}
		outSeq, err:=blur.FluxSmooth(seq, *radius, *thresh, *scene, sel)
		if err!=nil {
			return nil, err
		}
		return outSeq[len(outSeq)/2], nil
	default:
		return nil, fmt.Errorf("unknown operator %q", *op)
	}
}

func newRNG() *fastrand.RNG {
	s:=uint32(*seed)
	if s==0 {
		s=uint32(time.Now().UnixNano())
	}
	rng:=&fastrand.RNG{}
	rng.Seed(s)
	return rng
}

func loadOrGenerate() (*frame.Frame, error) {
	if *in=="" {
		format:=frame.SampleFormat{Float: *float, Bits: *bits}
		f:=frame.New(*width, *height, 1, format)
		f.FillNoise(newRNG())
		log.Printf("generated %dx%d %v noise frame\n", f.Width, f.Height, f.Format)
		return f, nil
	}
	file, err:=os.Open(*in)
	if err!=nil {
		return nil, err
	}
	defer file.Close()
	img, err:=png.Decode(file)
	if err!=nil {
		return nil, err
	}
	b:=img.Bounds()
	f:=frame.New(b.Dx(), b.Dy(), 1, frame.U16)
	for y:=0; y<f.Height; y++ {
		for x:=0; x<f.Width; x++ {
			r, g, bl, _:=img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			f.Set(0, x, y, float32((r+2*g+bl)/4))
		}
	}
	log.Printf("read %dx%d frame from %s\n", f.Width, f.Height, *in)
	return f, nil
}

func savePNG(name string, f *frame.Frame) error {
	img:=image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	max:=f.Format.MaxValue()
	for y:=0; y<f.Height; y++ {
		for x:=0; x<f.Width; x++ {
			v:=f.At(0, x, y)/max*255
			if v<0 {
				v=0
			} else if v>255 {
				v=255
			}
			img.Pix[y*img.Stride+x]=uint8(v)
		}
	}
	file, err:=os.Create(name)
	if err!=nil {
		return err
	}
	defer file.Close()
	log.Printf("saving output to %s\n", name)
	return png.Encode(file, img)
}

// saveDiffPNG renders |out-in| as a false color heat map, blue for
// untouched samples through red for the largest change.
func saveDiffPNG(name string, a, b *frame.Frame) error {
	maxDiff:=float32(0)
	for i:=range a.Planes[0] {
		d:=b.Planes[0][i]-a.Planes[0][i]
		if d<0 {
			d=-d
		}
		if d>maxDiff {
			maxDiff=d
		}
	}
	if maxDiff==0 {
		maxDiff=1
	}
	img:=image.NewRGBA(image.Rect(0, 0, a.Width, a.Height))
	for y:=0; y<a.Height; y++ {
		for x:=0; x<a.Width; x++ {
			d:=math.Abs(float64(b.At(0, x, y)-a.At(0, x, y)))/float64(maxDiff)
			c:=colorful.Hsv(240*(1-d), 1, 1)
			r, g, bl:=c.RGB255()
			o:=y*img.Stride + 4*x
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3]=r, g, bl, 255
		}
	}
	file, err:=os.Create(name)
	if err!=nil {
		return err
	}
	defer file.Close()
	log.Printf("saving difference heat map to %s, peak %.1f\n", name, maxDiff)
	return png.Encode(file, img)
}

func parsePlanes(s string) ([]int, error) {
	if s=="" {
		return nil, nil
	}
	var sel []int
	for _, part:=range strings.Split(s, ",") {
		p, err:=strconv.Atoi(strings.TrimSpace(part))
		if err!=nil {
			return nil, fmt.Errorf("invalid plane index %q", part)
		}
		sel=append(sel, p)
	}
	return sel, nil
}

func parseMode(s string) (kernel.ConvMode, error) {
	switch strings.ToLower(s) {
	case "h":
		return kernel.Horizontal, nil
	case "v":
		return kernel.Vertical, nil
	case "hv":
		return kernel.HV, nil
	case "square":
		return kernel.Square, nil
	}
	return kernel.HV, fmt.Errorf("invalid convolution mode %q", s)
}
