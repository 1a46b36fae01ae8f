package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestPerimeterPoint_Edges(t *testing.T) {
	// 6x2 rectangle: perimeter 16, top-center sits at distance 3
	tests := []struct {
		name string
		f    float64
		want Point
	}{
		{name: "top_center", f: 0, want: Point{3, 0}},
		{name: "top_right_corner_belongs_to_top", f: 3.0 / 16, want: Point{6, 0}},
		{name: "right_edge", f: 4.0 / 16, want: Point{6, 1}},
		{name: "bottom_right_corner_belongs_to_right", f: 5.0 / 16, want: Point{6, 2}},
		{name: "bottom_edge", f: 8.0 / 16, want: Point{3, 2}},
		{name: "bottom_left_corner_belongs_to_bottom", f: 11.0 / 16, want: Point{0, 2}},
		{name: "left_edge", f: 12.0 / 16, want: Point{0, 1}},
		{name: "top_left_corner_wraps_to_top", f: 13.0 / 16, want: Point{0, 0}},
		{name: "top_edge_after_wrap", f: 14.0 / 16, want: Point{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PerimeterPoint(tt.f, 6, 2)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PerimeterPoint(%v, 6, 2) = %v, want %v", tt.f, got, tt.want)
			}
		})
	}
}

func TestPerimeterPoint_Quarters64x32(t *testing.T) {
	tests := []struct {
		f    float64
		want Point
	}{
		{0, Point{32, 0}},
		{0.25, Point{64, 16}},
		{0.5, Point{32, 32}},
		{0.75, Point{0, 16}},
	}
	for _, tt := range tests {
		got, err := PerimeterPoint(tt.f, 64, 32)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("PerimeterPoint(%v, 64, 32) = %v, want %v", tt.f, got, tt.want)
		}
	}
}

func TestPerimeterPoint_TopCenterForAnySize(t *testing.T) {
	sizes := [][2]float64{{64, 32}, {32, 32}, {7, 3}, {1, 100}, {0.5, 0.25}}
	for _, s := range sizes {
		got, err := PerimeterPoint(0, s[0], s[1])
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", s, err)
		}
		if got != (Point{s[0] / 2, 0}) {
			t.Errorf("PerimeterPoint(0, %v, %v) = %v, want top-center", s[0], s[1], got)
		}
	}
}

func TestPerimeterPoint_AlwaysOnBorder(t *testing.T) {
	sizes := [][2]float64{{64, 32}, {32, 64}, {10, 10}, {3, 7}}
	for _, s := range sizes {
		for i := 0; i < 1000; i++ {
			f := float64(i) / 1000
			p, err := PerimeterPoint(f, s[0], s[1])
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !p.OnBorder(s[0], s[1]) {
				t.Fatalf("PerimeterPoint(%v, %v, %v) = %v is not on the border", f, s[0], s[1], p)
			}
		}
	}
}

func TestPerimeterPoint_WrapContinuity(t *testing.T) {
	start, _ := PerimeterPoint(0, 64, 32)
	end, err := PerimeterPoint(1-1e-12, 64, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(end.X-start.X) > 1e-6 || math.Abs(end.Y-start.Y) > 1e-6 {
		t.Errorf("f->1 gives %v, want close to %v", end, start)
	}

	// f=1 wraps exactly to f=0
	one, _ := PerimeterPoint(1, 64, 32)
	if one != start {
		t.Errorf("PerimeterPoint(1) = %v, want %v", one, start)
	}
}

func TestPerimeterPoint_InvalidDimension(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
	}{
		{"zero_width", 0, 32},
		{"zero_height", 64, 0},
		{"negative_width", -1, 32},
		{"negative_height", 64, -5},
		{"nan_width", math.NaN(), 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PerimeterPoint(0.3, tt.w, tt.h)
			if !errors.Is(err, ErrInvalidDimension) {
				t.Errorf("expected ErrInvalidDimension, got %v", err)
			}
		})
	}
}

func TestHandPoint(t *testing.T) {
	if got := HandPoint(32, 16, 64, 16, 0); got != (PixelPoint{32, 16}) {
		t.Errorf("ratio 0 = %v, want center", got)
	}
	if got := HandPoint(32, 16, 63.6, 0.4, 1); got != (PixelPoint{64, 0}) {
		t.Errorf("ratio 1 = %v, want rounded perimeter point", got)
	}
	if got := HandPoint(32, 16, 64, 16, 0.5); got != (PixelPoint{48, 16}) {
		t.Errorf("ratio 0.5 = %v", got)
	}
	// 32 + 0.6*(37-32) = 35.0; 16 + 0.6*(0-16) = 6.4
	if got := HandPoint(32, 16, 37, 0, 0.6); got != (PixelPoint{35, 6}) {
		t.Errorf("ratio 0.6 = %v", got)
	}
	// half rounds up for positive values: 0 + 0.5*5 = 2.5
	if got := HandPoint(0, 0, 5, 5, 0.5); got != (PixelPoint{3, 3}) {
		t.Errorf("half rounding = %v", got)
	}
	// extrapolation past the perimeter
	if got := HandPoint(32, 16, 64, 16, 1.5); got != (PixelPoint{80, 16}) {
		t.Errorf("ratio 1.5 = %v", got)
	}
}
