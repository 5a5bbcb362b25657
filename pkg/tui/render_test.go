package tui

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestFitKeepsAspect(t *testing.T) {
	w, h := fit(100, 50, 40, 40)
	if w != 40 || h != 20 {
		t.Errorf("fit(100,50,40,40) = %d,%d", w, h)
	}

	w, h = fit(50, 100, 40, 40)
	if w != 20 || h != 40 {
		t.Errorf("fit(50,100,40,40) = %d,%d", w, h)
	}

	w, h = fit(1000, 1, 10, 10)
	if w != 10 || h != 1 {
		t.Errorf("fit(1000,1,10,10) = %d,%d", w, h)
	}
}

func TestRenderHalfBlocksShape(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	out := RenderHalfBlocks(img, 8, 4)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(lines))
	}
	if !strings.Contains(out, "▀") {
		t.Error("expected half-block characters in output")
	}
}

func TestRenderHalfBlocksNil(t *testing.T) {
	if out := RenderHalfBlocks(nil, 10, 10); out != "" {
		t.Errorf("nil image should render empty, got %q", out)
	}
}
