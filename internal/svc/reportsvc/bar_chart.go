package reportsvc

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Charts are drawn on a fixed canvas and scaled to the configured size afterwards.
const (
	canvasWidth  = 800
	canvasHeight = 500

	marginLeft   = 40
	marginRight  = 20
	marginTop    = 50
	marginBottom = 70

	lineHeight = 13
)

//nolint:gochecknoglobals
var (
	colorBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorAxis       = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	colorText       = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	colorBar        = color.RGBA{R: 0x3b, G: 0x82, B: 0xc4, A: 0xff}
)

// Bar is one bar of a chart. Caption is printed above the bar and Label below it.
type Bar struct {
	Label   string
	Caption string
	Value   float64
}

// BarChart is a titled vertical bar chart.
type BarChart struct {
	Title string
	Bars  []Bar
}

// Draw renders the chart on a new canvas.
func (c BarChart) Draw() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	plot := image.Rect(marginLeft, marginTop, canvasWidth-marginRight, canvasHeight-marginBottom)

	drawTextCentered(img, c.Title, canvasWidth/2, marginTop/2+lineHeight/2)

	// axes
	fillRect(img, image.Rect(plot.Min.X, plot.Min.Y, plot.Min.X+1, plot.Max.Y+1), colorAxis)
	fillRect(img, image.Rect(plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y+1), colorAxis)

	if len(c.Bars) == 0 {
		drawTextCentered(img, "no data", plot.Min.X+plot.Dx()/2, plot.Min.Y+plot.Dy()/2)

		return img
	}

	var maxValue float64
	for _, bar := range c.Bars {
		maxValue = math.Max(maxValue, bar.Value)
	}

	slot := plot.Dx() / len(c.Bars)
	barWidth := max(slot*7/10, 1)
	usable := plot.Dy() - 2*lineHeight

	for i, bar := range c.Bars {
		x0 := plot.Min.X + i*slot + (slot-barWidth)/2
		center := x0 + barWidth/2

		height := 0
		if maxValue > 0 && bar.Value > 0 {
			height = max(int(math.Round(bar.Value/maxValue*float64(usable))), 1)
		}

		top := plot.Max.Y - height
		fillRect(img, image.Rect(x0, top, x0+barWidth, plot.Max.Y), colorBar)

		drawTextCentered(img, fitText(bar.Caption, slot), center, top-4)
		drawTextCentered(img, fitText(bar.Label, slot), center, plot.Max.Y+lineHeight+4)
	}

	return img
}

func fillRect(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawTextCentered draws text with its baseline at y, horizontally centered on x.
func drawTextCentered(img draw.Image, text string, x, y int) {
	drawer := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colorText),
		Face: basicfont.Face7x13,
	}

	width := drawer.MeasureString(text)
	drawer.Dot = fixed.Point26_6{
		X: fixed.I(x) - width/2,
		Y: fixed.I(y),
	}
	drawer.DrawString(text)
}

// fitText shortens text to the number of glyphs that fit in width pixels.
func fitText(text string, width int) string {
	glyphs := width / basicfont.Face7x13.Advance
	runes := []rune(text)

	switch {
	case len(runes) <= glyphs:
		return text
	case glyphs <= 1:
		return ""
	default:
		return string(runes[:glyphs-1]) + "~"
	}
}
