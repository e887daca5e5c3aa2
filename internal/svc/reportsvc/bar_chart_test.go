package reportsvc_test

import (
	"image/color"
	"testing"

	. "github.com/mkrupp/homecase-shop/internal/svc/reportsvc"
)

func TestBarChart_Draw(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bars []Bar
	}{
		{name: "no bars", bars: nil},
		{name: "zero values", bars: []Bar{{Label: "a", Value: 0}, {Label: "b", Value: 0}}},
		{name: "many bars", bars: []Bar{
			{Label: "Electronics", Caption: "8", Value: 8},
			{Label: "Furniture", Caption: "5", Value: 5},
			{Label: "A very long category name", Caption: "1", Value: 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img := BarChart{Title: tt.name, Bars: tt.bars}.Draw()

			if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 500 {
				t.Fatalf("Draw() bounds = %v", img.Bounds())
			}

			// corners stay background
			if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
				t.Errorf("corner color = %v", got)
			}
		})
	}
}

func TestBarChart_DrawsTallestBarToTop(t *testing.T) {
	t.Parallel()

	img := BarChart{Bars: []Bar{{Value: 1}, {Value: 4}}}.Draw()

	// the plot spans x 40..780 with two slots; the second bar is centered at x=595
	tallest := img.RGBAAt(595, 50+2*13+1)
	if tallest == (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Errorf("expected bar color near top of plot, got background")
	}

	// the first bar is a quarter as tall
	if got := img.RGBAAt(225, 50+2*13+1); got != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Errorf("expected background above the short bar, got %v", got)
	}
}
