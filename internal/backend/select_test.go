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


package backend

import (
	"testing"

	"github.com/mlnoga/vblur/internal/frame"
	"github.com/mlnoga/vblur/internal/kernel"
)

func TestSelectBox(t *testing.T) {
	tests:=[]struct {
		name   string
		r      BoxRequest
		c      CapabilitySet
		expect Path
	}{
		{"vector primitive wins", BoxRequest{Radius: 2, Format: frame.U16},
			CapabilitySet{HasVectorBoxBlur: true, HasExprEngine: true}, PathVectorBox},
		{"small radius compiles", BoxRequest{Radius: 2, Format: frame.U16},
			CapabilitySet{HasExprEngine: true}, PathExprConv},
		{"large radius stays legacy", BoxRequest{Radius: 20, Format: frame.U16},
			CapabilitySet{HasExprEngine: true}, PathLegacyBox},
		{"half float avoids legacy", BoxRequest{Radius: 20, Format: frame.F16},
			CapabilitySet{HasExprEngine: true}, PathExprConv},
		{"no engine small radius convolves", BoxRequest{Radius: 2, Format: frame.U16},
			CapabilitySet{}, PathConv},
		{"no engine large radius legacy", BoxRequest{Radius: 20, Format: frame.U16},
			CapabilitySet{}, PathLegacyBox},
	}
	for _, tc:=range tests {
		if got:=SelectBox(tc.r, tc.c); got!=tc.expect {
			t.Errorf("%s: got %v expect %v", tc.name, got, tc.expect)
		}
	}
}

func TestSelectBoxDeterministic(t *testing.T) {
	r:=BoxRequest{Radius: 3, Format: frame.U16}
	c:=CapabilitySet{HasExprEngine: true}
	first:=SelectBox(r, c)
	for i:=0; i<10; i++ {
		if got:=SelectBox(r, c); got!=first {
			t.Fatalf("selection flapped from %v to %v", first, got)
		}
	}
}

func TestSelectGauss(t *testing.T) {
	tests:=[]struct {
		name   string
		r      GaussRequest
		c      CapabilitySet
		expect Path
	}{
		{"short kernel convolves", GaussRequest{Taps: 3, Format: frame.U16, Mode: kernel.HV},
			CapabilitySet{HasExprEngine: true, HasScaleEngine: true}, PathConv},
		{"long kernel scales", GaussRequest{Taps: 30, Format: frame.U16, Mode: kernel.HV},
			CapabilitySet{HasExprEngine: true, HasScaleEngine: true}, PathScale},
		{"long kernel without scaler compiles", GaussRequest{Taps: 30, Format: frame.U16, Mode: kernel.HV},
			CapabilitySet{HasExprEngine: true}, PathExprConv},
		{"long kernel without anything fails", GaussRequest{Taps: 30, Format: frame.U16, Mode: kernel.HV},
			CapabilitySet{}, PathNone},
		{"float frames skip the scaler", GaussRequest{Taps: 30, Format: frame.F32, Mode: kernel.HV},
			CapabilitySet{HasExprEngine: true, HasScaleEngine: true}, PathExprConv},
	}
	for _, tc:=range tests {
		if got:=SelectGauss(tc.r, tc.c); got!=tc.expect {
			t.Errorf("%s: got %v expect %v", tc.name, got, tc.expect)
		}
	}
}

func TestSelectMedian(t *testing.T) {
	tests:=[]struct {
		name   string
		r      MedianRequest
		c      CapabilitySet
		expect Path
	}{
		{"radius 1 square direct", MedianRequest{Radius: 1, Mode: kernel.Square},
			CapabilitySet{}, PathMedian3x3},
		{"radius 1 hv direct", MedianRequest{Radius: 1, Mode: kernel.HV},
			CapabilitySet{}, PathMedian3x3},
		{"radius 1 horizontal needs engine", MedianRequest{Radius: 1, Mode: kernel.Horizontal},
			CapabilitySet{HasExprEngine: true}, PathExprProgram},
		{"radius 2 needs engine", MedianRequest{Radius: 2, Mode: kernel.Square},
			CapabilitySet{HasExprEngine: true}, PathExprProgram},
		{"radius 2 without engine fails", MedianRequest{Radius: 2, Mode: kernel.Square},
			CapabilitySet{}, PathNone},
	}
	for _, tc:=range tests {
		if got:=SelectMedian(tc.r, tc.c); got!=tc.expect {
			t.Errorf("%s: got %v expect %v", tc.name, got, tc.expect)
		}
	}
}

func TestSelectBilateral(t *testing.T) {
	gpuTrue, gpuFalse:=true, false
	all:=CapabilitySet{HasCPUBilateral: true, HasGPUBilateral: true, HasGPUBilateralRTC: true}
	tests:=[]struct {
		name   string
		r      BilateralRequest
		c      CapabilitySet
		expect Path
	}{
		{"auto prefers rtc", BilateralRequest{}, all, PathBilateralGPURTC},
		{"auto falls to gpu", BilateralRequest{}, CapabilitySet{HasCPUBilateral: true, HasGPUBilateral: true}, PathBilateralGPU},
		{"auto falls to cpu", BilateralRequest{}, CapabilitySet{HasCPUBilateral: true}, PathBilateralCPU},
		{"forced gpu ignores cpu", BilateralRequest{GPU: &gpuTrue}, CapabilitySet{HasCPUBilateral: true}, PathNone},
		{"forced cpu ignores gpu", BilateralRequest{GPU: &gpuFalse}, all, PathBilateralCPU},
		{"nothing available", BilateralRequest{}, CapabilitySet{}, PathNone},
	}
	for _, tc:=range tests {
		if got:=SelectBilateral(tc.r, tc.c); got!=tc.expect {
			t.Errorf("%s: got %v expect %v", tc.name, got, tc.expect)
		}
	}
}

func TestSelectSideMerge(t *testing.T) {
	if got:=SelectSideMerge(CapabilitySet{HasExprEngine: true}); got!=PathMergeExpr {
		t.Errorf("with engine got %v expect %v", got, PathMergeExpr)
	}
	if got:=SelectSideMerge(CapabilitySet{}); got!=PathMergeFold {
		t.Errorf("without engine got %v expect %v", got, PathMergeFold)
	}
}
