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


package blur

import (
	"errors"
	"testing"

	"github.com/mlnoga/vblur"
	"github.com/mlnoga/vblur/internal/backend"
	"github.com/mlnoga/vblur/internal/frame"
	"github.com/mlnoga/vblur/internal/kernel"
)

func constFrame(width, height, numPlanes int, format frame.SampleFormat, v float32) *frame.Frame {
	f:=frame.New(width, height, numPlanes, format)
	for p:=0; p<numPlanes; p++ {
		f.Fill(p, v)
	}
	return f
}

func expectConst(t *testing.T, f *frame.Frame, plane int, v float32) {
	t.Helper()
	for i, got:=range f.Planes[plane] {
		if got!=v {
			t.Fatalf("plane %d sample %d got %g expect %g", plane, i, got, v)
		}
	}
}

func TestBoxBlurIdentity(t *testing.T) {
	f:=constFrame(8, 8, 1, frame.U8, 42)
	out, err:=BoxBlur(f, 0, 1, kernel.HV, nil)
	if err!=nil {
		t.Fatal(err)
	}
	if out!=f {
		t.Error("radius 0 should return the input frame")
	}
	out, err=BoxBlur(f, 3, 0, kernel.HV, nil)
	if err!=nil {
		t.Fatal(err)
	}
	if out!=f {
		t.Error("zero passes should return the input frame")
	}
}

func TestBoxBlurSpike(t *testing.T) {
	f:=frame.New(5, 5, 1, frame.U8)
	f.Set(0, 2, 2, 90)
	out, err:=BoxBlur(f, 1, 1, kernel.HV, nil)
	if err!=nil {
		t.Fatal(err)
	}
	for y:=0; y<5; y++ {
		for x:=0; x<5; x++ {
			expect:=float32(0)
			if x>=1 && x<=3 && y>=1 && y<=3 {
				expect=10
			}
			if got:=out.At(0, x, y); got!=expect {
				t.Errorf("sample %d,%d got %g expect %g", x, y, got, expect)
			}
		}
	}
}

func TestBoxBlurAxes(t *testing.T) {
	f:=frame.New(5, 5, 1, frame.U8)
	f.Set(0, 2, 2, 90)
	out, err:=BoxBlur(f, 1, 1, kernel.Horizontal, nil)
	if err!=nil {
		t.Fatal(err)
	}
	// a horizontal pass must leave other rows untouched
	for y:=0; y<5; y++ {
		for x:=0; x<5; x++ {
			expect:=float32(0)
			if y==2 && x>=1 && x<=3 {
				expect=30
			}
			if got:=out.At(0, x, y); got!=expect {
				t.Errorf("sample %d,%d got %g expect %g", x, y, got, expect)
			}
		}
	}
}

func TestBoxBlurErrors(t *testing.T) {
	f:=constFrame(4, 4, 1, frame.U8, 0)
	if _, err:=BoxBlur(f, -1, 1, kernel.HV, nil); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("radius -1 got %v expect invalid parameter", err)
	}
	if _, err:=BoxBlur(f, 1, 1, kernel.Square, nil); !errors.Is(err, vblur.ErrUnsupportedMode) {
		t.Errorf("square mode got %v expect unsupported mode", err)
	}
	if _, err:=BoxBlur(f, 1, 1, kernel.HV, []int{1}); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("plane out of range got %v expect invalid parameter", err)
	}
}

func TestBoxBlurPerPlane(t *testing.T) {
	f:=frame.New(6, 6, 3, frame.U8)
	f.Fill(1, 100)
	f.Fill(2, 200)
	f.Set(0, 3, 3, 90)

	out, err:=BoxBlurPerPlane(f, []int{1, 0, 2}, 1, kernel.HV, nil)
	if err!=nil {
		t.Fatal(err)
	}
	if got:=out.At(0, 3, 3); got!=10 {
		t.Errorf("plane 0 spike got %g expect 10", got)
	}
	// constant planes stay constant under any radius, including zero
	expectConst(t, out, 1, 100)
	expectConst(t, out, 2, 200)

	if _, err:=BoxBlurPerPlane(f, []int{1, 2}, 1, kernel.HV, nil); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("short radius list got %v expect invalid parameter", err)
	}
}

func TestBoxBlurPerPlaneMatchesScalar(t *testing.T) {
	f:=frame.New(11, 9, 3, frame.U8)
	for p:=0; p<3; p++ {
		for y:=0; y<f.Height; y++ {
			for x:=0; x<f.Width; x++ {
				f.Set(p, x, y, float32((x*7+y*13+p*31)%256))
			}
		}
	}

	out, err:=BoxBlurPerPlane(f, []int{1, 0, 2}, 1, kernel.HV, nil)
	if err!=nil {
		t.Fatal(err)
	}
	// the zero-radius plane passes through bit-identical; the others match
	// scalar invocations on single-plane frames
	if !frame.EqualPlanes(out, f, 1) {
		t.Error("plane 1 changed despite radius 0")
	}
	for _, tc:=range []struct{ plane, radius int }{{0, 1}, {2, 2}} {
		single:=frame.New(f.Width, f.Height, 1, f.Format)
		copy(single.Planes[0], f.Planes[tc.plane])
		ref, err:=BoxBlur(single, tc.radius, 1, kernel.HV, nil)
		if err!=nil {
			t.Fatal(err)
		}
		for i:=range ref.Planes[0] {
			if out.Planes[tc.plane][i]!=ref.Planes[0][i] {
				t.Fatalf("plane %d sample %d got %g scalar reference %g",
					tc.plane, i, out.Planes[tc.plane][i], ref.Planes[0][i])
			}
		}
	}
}

func TestNormalizeRadiusGrouping(t *testing.T) {
	f:=frame.New(4, 4, 3, frame.U8)
	type call struct {
		value  int
		planes []int
	}
	var calls []call
	record:=func(f *frame.Frame, value int, planes []int) (*frame.Frame, error) {
		calls=append(calls, call{value, planes})
		return f, nil
	}

	if _, err:=normalizeRadiusInt("test", f, []int{2, 1, 2}, nil, record); err!=nil {
		t.Fatal(err)
	}
	if len(calls)!=2 {
		t.Fatalf("got %d invocations expect 2", len(calls))
	}
	if calls[0].value!=2 || len(calls[0].planes)!=2 || calls[0].planes[0]!=0 || calls[0].planes[1]!=2 {
		t.Errorf("first invocation got value %d planes %v expect 2 on [0 2]", calls[0].value, calls[0].planes)
	}
	if calls[1].value!=1 || len(calls[1].planes)!=1 || calls[1].planes[0]!=1 {
		t.Errorf("second invocation got value %d planes %v expect 1 on [1]", calls[1].value, calls[1].planes)
	}

	calls=nil
	if _, err:=normalizeRadiusInt("test", f, []int{1, 0, 2}, []int{2}, record); err!=nil {
		t.Fatal(err)
	}
	if len(calls)!=1 || calls[0].value!=2 {
		t.Fatalf("selected plane got %v expect one invocation with value 2", calls)
	}
}

func TestGaussBlurConstant(t *testing.T) {
	f:=constFrame(16, 16, 1, frame.U16, 10000)
	out, err:=GaussBlur(f, 1.5, 0, kernel.HV, nil)
	if err!=nil {
		t.Fatal(err)
	}
	expectConst(t, out, 0, 10000)
}

func TestGaussBlurSmooths(t *testing.T) {
	f:=frame.New(9, 9, 1, frame.U16)
	f.Set(0, 4, 4, 10000)
	out, err:=GaussBlur(f, 1.0, 0, kernel.HV, nil)
	if err!=nil {
		t.Fatal(err)
	}
	center:=out.At(0, 4, 4)
	if center>=10000 || center<=0 {
		t.Errorf("center got %g expect attenuated spike", center)
	}
	if side:=out.At(0, 3, 4); side<=0 || side>=center {
		t.Errorf("neighbor got %g expect between 0 and center %g", side, center)
	}
}

func TestGaussBlurMissingCapability(t *testing.T) {
	f:=constFrame(64, 64, 1, frame.U16, 100)
	caps:=backend.CapabilitySet{}
	eng:=&backend.Engines{}
	// sigma 10 needs over 12 taps, beyond the direct convolution limit
	_, err:=gaussBlurWith(caps, eng, f, 10.0, 0, kernel.HV, nil)
	if !errors.Is(err, vblur.ErrMissingCapability) {
		t.Errorf("got %v expect missing capability", err)
	}
}

func TestGaussBlurSigmaClampPerAxis(t *testing.T) {
	f:=constFrame(4, 4, 1, frame.U16, 100)
	caps:=backend.CapabilitySet{}
	eng:=&backend.Engines{}
	// a horizontal blur caps sigma at the width, giving a kernel short
	// enough for direct convolution even without any engines
	if _, err:=gaussBlurWith(caps, eng, f, 100, 0, kernel.Horizontal, nil); err!=nil {
		t.Errorf("restricted axis got %v expect clamped sigma to convolve directly", err)
	}
	// a two-axis blur keeps the requested sigma and must fail instead of
	// silently shrinking the kernel
	if _, err:=gaussBlurWith(caps, eng, f, 100, 0, kernel.HV, nil); !errors.Is(err, vblur.ErrMissingCapability) {
		t.Errorf("hv mode got %v expect missing capability", err)
	}
}

func TestGaussBlurErrors(t *testing.T) {
	f:=constFrame(4, 4, 1, frame.U8, 0)
	if _, err:=GaussBlur(f, 0, 0, kernel.HV, nil); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("sigma 0 got %v expect invalid parameter", err)
	}
	if _, err:=GaussBlur(f, 1, -1, kernel.HV, nil); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("taps -1 got %v expect invalid parameter", err)
	}
	if _, err:=GaussBlur(f, 1, 0, kernel.Square, nil); !errors.Is(err, vblur.ErrUnsupportedMode) {
		t.Errorf("square mode got %v expect unsupported mode", err)
	}
}

func TestMedianBlurSpike(t *testing.T) {
	f:=frame.New(5, 5, 1, frame.U8)
	f.Set(0, 2, 2, 255)
	out, err:=MedianBlur(f, 1, kernel.Square, nil)
	if err!=nil {
		t.Fatal(err)
	}
	expectConst(t, out, 0, 0)
}

func TestMedianBlurLargerRadius(t *testing.T) {
	f:=constFrame(9, 9, 1, frame.U8, 50)
	f.Set(0, 4, 4, 255)
	out, err:=MedianBlur(f, 2, kernel.Square, nil)
	if err!=nil {
		t.Fatal(err)
	}
	expectConst(t, out, 0, 50)
}

func TestMedianBlurErrors(t *testing.T) {
	f:=constFrame(4, 4, 1, frame.U8, 0)
	if _, err:=MedianBlur(f, 0, kernel.Square, nil); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("radius 0 got %v expect invalid parameter", err)
	}
	caps:=backend.CapabilitySet{}
	if _, err:=medianBlurWith(caps, &backend.Engines{}, f, 2, kernel.Square, nil); !errors.Is(err, vblur.ErrMissingCapability) {
		t.Errorf("radius 2 without engine got %v expect missing capability", err)
	}
}

func TestMinBlurConstant(t *testing.T) {
	f:=constFrame(8, 8, 1, frame.U8, 77)
	out, err:=MinBlur(f, 1, kernel.Square, nil)
	if err!=nil {
		t.Fatal(err)
	}
	expectConst(t, out, 0, 77)
}

func TestMinBlurSpike(t *testing.T) {
	f:=frame.New(7, 7, 1, frame.U8)
	f.Set(0, 3, 3, 200)
	out, err:=MinBlur(f, 1, kernel.Square, nil)
	if err!=nil {
		t.Fatal(err)
	}
	// the median candidate kills the spike outright
	if got:=out.At(0, 3, 3); got>=200 {
		t.Errorf("spike got %g expect attenuation", got)
	}
}

func TestSoftBlurReduceConstant(t *testing.T) {
	f:=constFrame(8, 8, 1, frame.U16, 30000)
	out, err:=SoftBlurReduce(f, 1, kernel.HV, nil)
	if err!=nil {
		t.Fatal(err)
	}
	expectConst(t, out, 0, 30000)
}

func TestSideBoxBlurConstant(t *testing.T) {
	f:=constFrame(8, 8, 1, frame.U8, 55)
	out, err:=SideBoxBlur(f, 2, nil, false)
	if err!=nil {
		t.Fatal(err)
	}
	expectConst(t, out, 0, 55)
}

func TestSideBoxBlurKeepsStepEdge(t *testing.T) {
	f:=frame.New(8, 8, 1, frame.U8)
	for y:=0; y<8; y++ {
		for x:=4; x<8; x++ {
			f.Set(0, x, y, 200)
		}
	}
	out, err:=SideBoxBlur(f, 1, nil, true)
	if err!=nil {
		t.Fatal(err)
	}
	// every pixel has a one-sided candidate fully inside its region, so
	// an ideal step survives exactly
	for y:=0; y<8; y++ {
		for x:=0; x<8; x++ {
			if got:=out.At(0, x, y); got!=f.At(0, x, y) {
				t.Errorf("sample %d,%d got %g expect %g", x, y, got, f.At(0, x, y))
			}
		}
	}
}

func TestSideBoxBlurPlanePassthrough(t *testing.T) {
	f:=frame.New(9, 9, 2, frame.U8)
	for p:=0; p<2; p++ {
		for y:=0; y<f.Height; y++ {
			for x:=0; x<f.Width; x++ {
				f.Set(p, x, y, float32((x*17+y*5+p*41)%256))
			}
		}
	}
	out, err:=SideBoxBlur(f, 2, []int{0}, false)
	if err!=nil {
		t.Fatal(err)
	}
	// the final smoothing pass honors the selection too
	if !frame.EqualPlanes(out, f, 1) {
		t.Error("unselected plane 1 changed")
	}
	if frame.EqualPlanes(out, f, 0) {
		t.Error("selected plane 0 unchanged")
	}
}

func TestSideBoxBlurErrors(t *testing.T) {
	f:=constFrame(4, 4, 1, frame.U8, 0)
	if _, err:=SideBoxBlur(f, 0, nil, false); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("radius 0 got %v expect invalid parameter", err)
	}
}

func TestBilateralConstant(t *testing.T) {
	f:=constFrame(8, 8, 1, frame.U8, 120)
	out, err:=Bilateral(f, []float64{1.5}, []float64{0.02}, nil, nil, nil)
	if err!=nil {
		t.Fatal(err)
	}
	expectConst(t, out, 0, 120)
}

func TestBilateralErrors(t *testing.T) {
	f:=constFrame(4, 4, 1, frame.U8, 0)
	if _, err:=Bilateral(f, []float64{-1}, []float64{0.02}, nil, nil, nil); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("negative sigmaS got %v expect invalid parameter", err)
	}
	if _, err:=Bilateral(f, nil, []float64{0.02}, nil, nil, nil); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("empty sigmaS got %v expect invalid parameter", err)
	}
	ref:=constFrame(5, 4, 1, frame.U8, 0)
	if _, err:=Bilateral(f, []float64{1}, []float64{0.02}, ref, nil, nil); !errors.Is(err, vblur.ErrFormatMismatch) {
		t.Errorf("mismatched reference got %v expect format mismatch", err)
	}
	gpu:=true
	if _, err:=Bilateral(f, []float64{1}, []float64{0.02}, nil, &gpu, nil); !errors.Is(err, vblur.ErrMissingCapability) {
		t.Errorf("forced gpu got %v expect missing capability", err)
	}
}

func TestFluxSmoothConstant(t *testing.T) {
	seq:=make([]*frame.Frame, 5)
	for i:=range seq {
		seq[i]=constFrame(6, 6, 1, frame.U8, 99)
	}
	out, err:=FluxSmooth(seq, 2, 7, 0, nil)
	if err!=nil {
		t.Fatal(err)
	}
	if len(out)!=len(seq) {
		t.Fatalf("got %d frames expect %d", len(out), len(seq))
	}
	for _, f:=range out {
		expectConst(t, f, 0, 99)
	}
}

func TestFluxSmoothFlicker(t *testing.T) {
	// a single flickering frame in an otherwise static sequence gets
	// pulled toward its neighbors
	seq:=make([]*frame.Frame, 5)
	for i:=range seq {
		v:=float32(100)
		if i==2 {
			v=104
		}
		seq[i]=constFrame(6, 6, 1, frame.U8, v)
	}
	out, err:=FluxSmooth(seq, 1, 7, 0, nil)
	if err!=nil {
		t.Fatal(err)
	}
	if got:=out[2].At(0, 3, 3); got>=104 || got<100 {
		t.Errorf("flicker frame got %g expect a value pulled toward 100", got)
	}
}

func TestFluxSmoothErrors(t *testing.T) {
	seq:=[]*frame.Frame{constFrame(4, 4, 1, frame.U8, 0)}
	if _, err:=FluxSmooth(nil, 1, 7, 0, nil); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("empty sequence got %v expect invalid parameter", err)
	}
	if _, err:=FluxSmooth(seq, 0, 7, 0, nil); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("radius 0 got %v expect invalid parameter", err)
	}
	if _, err:=FluxSmooth(seq, 8, 7, 0, nil); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("radius 8 got %v expect invalid parameter", err)
	}
	if _, err:=FluxSmooth(seq, 1, -1, 0, nil); !errors.Is(err, vblur.ErrInvalidParameter) {
		t.Errorf("negative threshold got %v expect invalid parameter", err)
	}
}
