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
	"math"
	"testing"

	"github.com/valyala/fastrand"

	"github.com/mlnoga/vblur/internal/expr"
	"github.com/mlnoga/vblur/internal/frame"
	"github.com/mlnoga/vblur/internal/kernel"
)

func noiseFrame(width, height, numPlanes int, format frame.SampleFormat, seed uint32) *frame.Frame {
	f:=frame.New(width, height, numPlanes, format)
	rng:=fastrand.RNG{}
	rng.Seed(seed)
	f.FillNoise(&rng)
	return f
}

// The moving-sum box pass and a mean kernel convolution round identically;
// a single pass of either must agree sample for sample.
func TestBoxBlurMatchesMeanConvolution(t *testing.T) {
	f:=noiseFrame(33, 21, 1, frame.U16, 1)
	for radius:=1; radius<=4; radius++ {
		k, err:=kernel.Mean(radius)
		if err!=nil {
			t.Fatal(err)
		}
		box:=BoxBlur(f, []bool{true}, radius, 1, radius, 1)
		conv:=ConvolveFrame(f, k, kernel.HV, []bool{true})
		for i:=range box.Planes[0] {
			if box.Planes[0][i]!=conv.Planes[0][i] {
				t.Fatalf("radius %d sample %d box %g conv %g", radius, i,
					box.Planes[0][i], conv.Planes[0][i])
			}
		}
	}
}

func TestBoxBlurConstant(t *testing.T) {
	f:=frame.New(16, 16, 1, frame.U8)
	f.Fill(0, 200)
	out:=BoxBlur(f, []bool{true}, 3, 2, 3, 2)
	for i, got:=range out.Planes[0] {
		if got!=200 {
			t.Fatalf("sample %d got %g expect 200", i, got)
		}
	}
}

// The parallel expression engine must agree with the serial interpreter
// regardless of how rows are batched across goroutines.
func TestExprEngineMatchesSerialRun(t *testing.T) {
	f:=noiseFrame(65, 49, 2, frame.U16, 2)
	p, err:=expr.MedianClip(2, kernel.Square)
	if err!=nil {
		t.Fatal(err)
	}
	parallel, err:=exprEngine{}.EvalExpr(p, []*frame.Frame{f}, nil)
	if err!=nil {
		t.Fatal(err)
	}
	serial, err:=expr.Run(p, []*frame.Frame{f}, nil)
	if err!=nil {
		t.Fatal(err)
	}
	for plane:=0; plane<f.NumPlanes(); plane++ {
		if !frame.EqualPlanes(parallel, serial, plane) {
			t.Errorf("plane %d differs between parallel and serial evaluation", plane)
		}
	}
}

func TestExprEngineRejectsShapeMismatch(t *testing.T) {
	p, err:=expr.MergeAgreement()
	if err!=nil {
		t.Fatal(err)
	}
	a:=noiseFrame(8, 8, 1, frame.U8, 3)
	b:=noiseFrame(9, 8, 1, frame.U8, 4)
	if _, err:=(exprEngine{}).EvalExpr(p, []*frame.Frame{a, a, b}, nil); err==nil {
		t.Error("mismatched source shapes accepted, expect error")
	}
	if _, err:=(exprEngine{}).EvalExpr(p, []*frame.Frame{a, a}, nil); err==nil {
		t.Error("wrong source count accepted, expect error")
	}
}

func TestMedian3x3RemovesSpike(t *testing.T) {
	f:=frame.New(7, 7, 1, frame.U8)
	f.Set(0, 3, 3, 255)
	out:=Median3x3(f, []bool{true})
	for i, got:=range out.Planes[0] {
		if got!=0 {
			t.Fatalf("sample %d got %g expect 0", i, got)
		}
	}
}

func TestTemporalMedianStatic(t *testing.T) {
	seq:=make([]*frame.Frame, 5)
	for i:=range seq {
		seq[i]=frame.New(4, 4, 1, frame.U8)
		seq[i].Fill(0, float32(10*i))
	}
	out, err:=temporalMedian{}.TemporalMedian(seq, 1, nil)
	if err!=nil {
		t.Fatal(err)
	}
	// interior frames see (i-1, i, i+1); the window clamps at the ends,
	// where the even-sized window yields the upper central value
	expect:=[]float32{10, 10, 20, 30, 40}
	for i, e:=range expect {
		if got:=out[i].At(0, 2, 2); got!=e {
			t.Errorf("frame %d got %g expect %g", i, got, e)
		}
	}
}

func TestTemporalSoftenThreshold(t *testing.T) {
	// neighbors within the threshold average; one outlier is excluded
	seq:=make([]*frame.Frame, 3)
	vals:=[]float32{100, 103, 200}
	for i:=range seq {
		seq[i]=frame.New(4, 4, 1, frame.U8)
		seq[i].Fill(0, vals[i])
	}
	out, err:=temporalSoften{}.TemporalSoften(seq, 1, 7, 7, 0, nil)
	if err!=nil {
		t.Fatal(err)
	}
	// frame 1: 200 deviates by 97 > 7, so the average covers 100 and 103
	got:=out[1].At(0, 1, 1)
	if math.Abs(float64(got)-101.5)>1 {
		t.Errorf("frame 1 got %g expect about 101.5", got)
	}
}

func TestTemporalSoftenZeroThresholdCopies(t *testing.T) {
	seq:=make([]*frame.Frame, 3)
	for i:=range seq {
		seq[i]=frame.New(4, 4, 1, frame.U8)
		seq[i].Fill(0, float32(50+i))
	}
	out, err:=temporalSoften{}.TemporalSoften(seq, 1, 0, 0, 0, nil)
	if err!=nil {
		t.Fatal(err)
	}
	for i:=range seq {
		if !frame.EqualPlanes(out[i], seq[i], 0) {
			t.Errorf("frame %d changed despite zero threshold", i)
		}
	}
}

func TestBilateralConstant(t *testing.T) {
	f:=frame.New(8, 8, 1, frame.U8)
	f.Fill(0, 150)
	out, err:=bilateralCPU{}.Bilateral(f, nil, []float64{1.5}, []float64{0.02}, nil)
	if err!=nil {
		t.Fatal(err)
	}
	for i, got:=range out.Planes[0] {
		if got!=150 {
			t.Fatalf("sample %d got %g expect 150", i, got)
		}
	}
}

func TestBilateralKeepsHardEdge(t *testing.T) {
	f:=frame.New(8, 8, 1, frame.U8)
	for y:=0; y<8; y++ {
		for x:=4; x<8; x++ {
			f.Set(0, x, y, 200)
		}
	}
	out, err:=bilateralCPU{}.Bilateral(f, nil, []float64{1.0}, []float64{0.02}, nil)
	if err!=nil {
		t.Fatal(err)
	}
	// a range sigma of 2% of full scale gives the far side of a 200-step
	// negligible weight; the edge must stay within a rounding step
	for y:=0; y<8; y++ {
		if got:=out.At(0, 3, y); got>1 {
			t.Errorf("dark side at row %d got %g expect at most 1", y, got)
		}
		if got:=out.At(0, 4, y); got<199 {
			t.Errorf("bright side at row %d got %g expect at least 199", y, got)
		}
	}
}

func TestBilateralRejectsFloat(t *testing.T) {
	f:=frame.New(4, 4, 1, frame.F32)
	if _, err:=(bilateralCPU{}).Bilateral(f, nil, []float64{1}, []float64{0.02}, nil); err==nil {
		t.Error("float frame accepted, expect error")
	}
}

func TestScaleGaussConstant(t *testing.T) {
	f:=frame.New(16, 16, 1, frame.U16)
	f.Fill(0, 30000)
	out, err:=scaleGauss{}.GaussBlur(f, 2.0, 5, kernel.HV, nil)
	if err!=nil {
		t.Fatal(err)
	}
	for i, got:=range out.Planes[0] {
		if math.Abs(float64(got)-30000)>1 {
			t.Fatalf("sample %d got %g expect 30000", i, got)
		}
	}
}

func TestScaleGaussMatchesConvolution(t *testing.T) {
	f:=noiseFrame(32, 24, 1, frame.U8, 5)
	out, err:=scaleGauss{}.GaussBlur(f, 1.5, 4, kernel.HV, nil)
	if err!=nil {
		t.Fatal(err)
	}
	k, err:=kernel.Gauss(1.5, 4, 1.0)
	if err!=nil {
		t.Fatal(err)
	}
	conv:=ConvolveFrame(f, k, kernel.HV, []bool{true})
	// resampling point-samples the kernel while the convolution integrates
	// it per tap; agreement within a few sample steps is the contract
	for i:=range out.Planes[0] {
		if d:=math.Abs(float64(out.Planes[0][i]-conv.Planes[0][i])); d>6 {
			t.Fatalf("sample %d scaler %g conv %g", i, out.Planes[0][i], conv.Planes[0][i])
		}
	}
}
