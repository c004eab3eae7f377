package models

import (
	"math"
	"testing"
)

func TestBMI(t *testing.T) {
	height := 180.0
	weight := 81.0
	p := &Patient{HeightCm: &height, WeightKg: &weight}

	if got, want := p.BMI(), 25.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("BMI = %v, want %v", got, want)
	}
}

func TestBMIMissingMeasurements(t *testing.T) {
	zero := 0.0
	weight := 80.0
	cases := []*Patient{
		{},
		{WeightKg: &weight},
		{HeightCm: &zero, WeightKg: &weight},
	}
	for i, p := range cases {
		if got := p.BMI(); got != 0 {
			t.Errorf("case %d: BMI = %v, want 0", i, got)
		}
	}
}
