package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderHalfBlocks draws img scaled to fit maxCols x maxRows terminal
// cells. Each cell shows two vertical pixels using the upper half
// block, foreground for the top pixel and background for the bottom.
func RenderHalfBlocks(img image.Image, maxCols, maxRows int) string {
	if img == nil || maxCols < 1 || maxRows < 1 {
		return ""
	}

	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return ""
	}

	// One cell is one pixel wide and two pixels tall.
	cols, rows := fit(srcW, srcH, maxCols, maxRows*2)
	if rows%2 != 0 {
		rows++
	}

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		for x := 0; x < cols; x++ {
			top := sample(img, x, y, cols, rows)
			bot := sample(img, x, y+1, cols, rows)
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bot))
			sb.WriteString(style.Render("▀"))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// fit scales srcW x srcH to the largest size that fits maxW x maxH
// while keeping the aspect ratio.
func fit(srcW, srcH, maxW, maxH int) (int, int) {
	w, h := maxW, srcH*maxW/srcW
	if h > maxH {
		w, h = srcW*maxH/srcH, maxH
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// sample nearest-neighbor picks the pixel for cell (x,y) of a cols x
// rows grid and returns it as a hex color.
func sample(img image.Image, x, y, cols, rows int) string {
	b := img.Bounds()
	sx := b.Min.X + x*b.Dx()/cols
	sy := b.Min.Y + y*b.Dy()/rows
	r, g, bl, _ := img.At(sx, sy).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(bl>>8))
}
