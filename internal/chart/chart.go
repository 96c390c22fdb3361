// Package chart draws a daily series as a PNG bar chart.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/erazemk/zaloga/internal/aggregate"
)

// Metric selects which value of a day the bars show.
type Metric string

// Metrics.
const (
	MetricCount    Metric = "count"
	MetricQuantity Metric = "quantity"
)

// ParseMetric returns the metric named by s, defaulting to count.
func ParseMetric(s string) Metric {
	if Metric(s) == MetricQuantity {
		return MetricQuantity
	}
	return MetricCount
}

// MaxDimension bounds the width and height of a chart.
const MaxDimension = 1600

// Default size.
const (
	DefaultWidth  = 800
	DefaultHeight = 300
)

const (
	marginLeft   = 48
	marginRight  = 12
	marginTop    = 24
	marginBottom = 24
)

var (
	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	axis       = color.RGBA{0x64, 0x74, 0x8b, 0xff}
	grid       = color.RGBA{0xe2, 0xe8, 0xf0, 0xff}
	bar        = color.RGBA{0x25, 0x63, 0xeb, 0xff}
	text       = color.RGBA{0x1e, 0x29, 0x3b, 0xff}
)

// Options controls the rendering.
type Options struct {
	Title  string
	Metric Metric
	Width  int
	Height int
}

// Render writes the series as a PNG image.
func Render(w io.Writer, days []aggregate.Day, opts Options) error {
	img := Draw(days, opts)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("writing PNG: %w", err)
	}
	return nil
}

// Draw returns the chart image. Sizes are clamped to MaxDimension and to
// the smallest size that still fits the margins.
func Draw(days []aggregate.Day, opts Options) *image.RGBA {
	width := clamp(opts.Width, DefaultWidth, marginLeft+marginRight+len(days)+1)
	height := clamp(opts.Height, DefaultHeight, marginTop+marginBottom+1)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	plot := image.Rect(marginLeft, marginTop, width-marginRight, height-marginBottom)
	top := ceiling(days, opts.Metric)

	// Horizontal grid lines at quarters.
	for i := 1; i <= 4; i++ {
		y := plot.Max.Y - plot.Dy()*i/4
		fill(img, image.Rect(plot.Min.X, y, plot.Max.X, y+1), grid)
		label(img, 4, y+4, formatValue(top*float64(i)/4))
	}

	if len(days) > 0 {
		slot := float64(plot.Dx()) / float64(len(days))
		gap := max(1, int(slot/5))
		for i, d := range days {
			v := value(d, opts.Metric)
			if v <= 0 || top <= 0 {
				continue
			}
			h := int(float64(plot.Dy()) * v / top)
			x0 := plot.Min.X + int(float64(i)*slot)
			x1 := plot.Min.X + int(float64(i+1)*slot) - gap
			if x1 <= x0 {
				x1 = x0 + 1
			}
			fill(img, image.Rect(x0, plot.Max.Y-h, x1, plot.Max.Y), bar)
		}

		// Day labels on the first day and every fifth.
		for i, d := range days {
			if d.Day != 1 && d.Day%5 != 0 {
				continue
			}
			x := plot.Min.X + int(float64(i)*slot)
			label(img, x, height-8, strconv.Itoa(d.Day))
		}
	}

	fill(img, image.Rect(plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y+1), axis)
	fill(img, image.Rect(plot.Min.X-1, plot.Min.Y, plot.Min.X, plot.Max.Y+1), axis)

	if opts.Title != "" {
		label(img, marginLeft, 16, opts.Title)
	}
	return img
}

func clamp(v, def, minimum int) int {
	if v <= 0 {
		v = def
	}
	return min(max(v, minimum), MaxDimension)
}

func value(d aggregate.Day, m Metric) float64 {
	if m == MetricQuantity {
		return d.Quantity
	}
	return float64(d.Count)
}

// ceiling is the value at the top of the plot: the series peak, at least 1.
func ceiling(days []aggregate.Day, m Metric) float64 {
	count, quantity := aggregate.Peak(days)
	top := float64(count)
	if m == MetricQuantity {
		top = quantity
	}
	return max(top, 1)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

func label(img *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(text),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
