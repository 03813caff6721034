// Package render draws quote images: black 800×400 canvas, centered
// word-wrapped text, "@botname" footer.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	canvasWidth  = 800
	canvasHeight = 400
	mainFontSize = 36
	footFontSize = 20
	// The text block may use at most 80% of the canvas width.
	maxTextWidth = canvasWidth * 0.8
	lineHeight   = mainFontSize * 1.3
	footerOffset = 30 // px above the bottom edge
)

// Renderer produces quote images. The font faces are shared across calls and
// a truetype face is not safe for concurrent use, so Render holds a mutex for
// the full draw. One Renderer is safe to share between goroutines.
type Renderer struct {
	mu   sync.Mutex
	main font.Face
	foot font.Face
}

// New parses the embedded Go Regular font at both sizes.
func New() (*Renderer, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Renderer{
		main: truetype.NewFace(f, &truetype.Options{Size: mainFontSize}),
		foot: truetype.NewFace(f, &truetype.Options{Size: footFontSize}),
	}, nil
}

// Render draws text centered on the canvas with identity as an "@" footer and
// returns the encoded PNG.
func (r *Renderer) Render(text, identity string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dc := gg.NewContext(canvasWidth, canvasHeight)

	dc.SetRGB(0, 0, 0)
	dc.Clear()

	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(r.main)

	lines := wrapLines(func(s string) float64 {
		w, _ := dc.MeasureString(s)
		return w
	}, text, maxTextWidth)

	blockHeight := float64(len(lines)) * lineHeight
	startY := (canvasHeight - blockHeight) / 2
	for i, line := range lines {
		dc.DrawStringAnchored(line, canvasWidth/2, startY+float64(i)*lineHeight, 0.5, 0.5)
	}

	dc.SetFontFace(r.foot)
	dc.DrawStringAnchored("@"+identity, canvasWidth/2, canvasHeight-footerOffset, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapLines greedily packs words into lines no wider than maxWidth, as
// reported by measure. A word wider than maxWidth still gets a line of its
// own, so the loop always makes progress.
func wrapLines(measure func(string) float64, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	var lines []string
	var current string

	for _, w := range words {
		test := w
		if current != "" {
			test = current + " " + w
		}
		if measure(test) > maxWidth && current != "" {
			lines = append(lines, current)
			current = w
		} else {
			current = test
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
