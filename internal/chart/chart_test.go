package chart

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/erazemk/zaloga/internal/aggregate"
)

func series(counts ...int) []aggregate.Day {
	days := make([]aggregate.Day, len(counts))
	for i, c := range counts {
		days[i] = aggregate.Day{Day: i + 1, Count: c, Quantity: float64(c) * 2}
	}
	return days
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, series(0, 3, 1), Options{Title: "Supplies"}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding PNG: %v", err)
	}
	if img.Bounds().Dx() != DefaultWidth || img.Bounds().Dy() != DefaultHeight {
		t.Errorf("expected %dx%d, got %v", DefaultWidth, DefaultHeight, img.Bounds())
	}
}

func TestDrawClampsSize(t *testing.T) {
	img := Draw(series(1), Options{Width: 10000, Height: 5})
	if img.Bounds().Dx() != MaxDimension {
		t.Errorf("expected width %d, got %d", MaxDimension, img.Bounds().Dx())
	}
	if img.Bounds().Dy() < marginTop+marginBottom {
		t.Errorf("height %d does not fit margins", img.Bounds().Dy())
	}
}

func TestDrawTallestBarReachesTop(t *testing.T) {
	img := Draw(series(0, 4, 2), Options{Width: 200, Height: 200})
	plotTop := marginTop
	slot := float64(200-marginLeft-marginRight) / 3
	x := marginLeft + int(slot) + 1

	if got := img.RGBAAt(x, plotTop+1); got != bar {
		t.Errorf("expected bar colour at top of tallest bar, got %v", got)
	}
	if got := img.RGBAAt(marginLeft+1, plotTop+1); got == bar {
		t.Error("empty day should have no bar")
	}
}

func TestDrawEmptySeries(t *testing.T) {
	img := Draw(nil, Options{})
	if img.Bounds().Empty() {
		t.Fatal("expected an image for an empty series")
	}
}

func TestParseMetric(t *testing.T) {
	if ParseMetric("quantity") != MetricQuantity {
		t.Error("expected quantity")
	}
	if ParseMetric("bogus") != MetricCount {
		t.Error("expected count default")
	}
}
