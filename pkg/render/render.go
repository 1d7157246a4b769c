// Package render draws a graph document onto a fixed-size raster canvas
// and encodes it as PNG.
package render

import (
	"fmt"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/dhikaid/graphview/pkg/graph"
	"github.com/dhikaid/graphview/pkg/layout"
)

// Background selects the canvas fill applied before drawing.
type Background string

const (
	// BackgroundWhite fills the canvas opaque white.
	BackgroundWhite Background = "white"
	// BackgroundTransparent leaves the canvas fully transparent.
	BackgroundTransparent Background = "transparent"
)

// Drawing constants carried over from the canvas prototype.
const (
	vertexRadius    = 5
	labelOffsetX    = 10
	titleBaselineY  = 30
	captionGapY     = 20
	axisMargin      = 50
	defaultTitle    = "Graph Akademik"
	defaultSubtitle = "Kelompok 2"
)

// Options configures a single render pass.
type Options struct {
	Background Background
	// DrawAxes draws the L-shaped axes polyline in the canvas margin.
	DrawAxes bool
	// Captions draws Title and Subtitle horizontally centered near the top.
	Captions bool
	Title    string
	Subtitle string
}

// DefaultOptions matches the service's standard output: white background,
// axes, no captions.
func DefaultOptions() Options {
	return Options{
		Background: BackgroundWhite,
		DrawAxes:   true,
		Title:      defaultTitle,
		Subtitle:   defaultSubtitle,
	}
}

// Image wraps a drawn canvas ready for encoding.
type Image struct {
	dc *gg.Context
}

// Render lays the document's vertices out on the fixed circle and draws
// edges, vertex discs, and name labels. Edges whose endpoints do not match
// any vertex name are skipped silently. An empty document renders a blank
// canvas.
func Render(doc graph.Document, opts Options) *Image {
	dc := gg.NewContext(layout.CanvasWidth, layout.CanvasHeight)
	dc.SetFontFace(basicfont.Face7x13)

	if opts.Background == BackgroundWhite {
		dc.SetRGB(1, 1, 1)
		dc.Clear()
	}

	if opts.DrawAxes {
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1)
		dc.MoveTo(axisMargin, axisMargin)
		dc.LineTo(axisMargin, layout.CanvasHeight-axisMargin)
		dc.LineTo(layout.CanvasWidth-axisMargin, layout.CanvasHeight-axisMargin)
		dc.Stroke()
	}

	if opts.Captions {
		drawCenteredText(dc, opts.Title, titleBaselineY)
		drawCenteredText(dc, opts.Subtitle, titleBaselineY+captionGapY)
	}

	positioned := layout.CircularDefault(doc.Vertices)

	// Edges first so discs and labels paint over them.
	dc.SetRGB(0, 0, 1)
	dc.SetLineWidth(1)
	for _, e := range doc.Edges {
		from, okFrom := findVertex(positioned, e.From)
		to, okTo := findVertex(positioned, e.To)
		if !okFrom || !okTo {
			continue
		}
		dc.DrawLine(from.X, from.Y, to.X, to.Y)
		dc.Stroke()
	}

	dc.SetRGB(1, 0, 0)
	for _, v := range positioned {
		dc.DrawCircle(v.X, v.Y, vertexRadius)
		dc.Fill()
		dc.DrawString(v.Name, v.X+labelOffsetX, v.Y)
	}

	return &Image{dc: dc}
}

// findVertex resolves a name to its position by exact match, binding to the
// first occurrence when names are duplicated.
func findVertex(positioned []layout.PositionedVertex, name string) (layout.PositionedVertex, bool) {
	for _, v := range positioned {
		if v.Name == name {
			return v, true
		}
	}
	return layout.PositionedVertex{}, false
}

// drawCenteredText draws s horizontally centered at the given baseline.
func drawCenteredText(dc *gg.Context, s string, baselineY float64) {
	if s == "" {
		return
	}
	w, _ := dc.MeasureString(s)
	dc.SetRGB(0, 0, 0)
	dc.DrawString(s, (layout.CanvasWidth-w)/2, baselineY)
}

// EncodePNG writes the image as PNG to w.
func (img *Image) EncodePNG(w io.Writer) error {
	if err := img.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// WriteFile encodes the image as PNG and writes it to path.
func (img *Image) WriteFile(path string) error {
	if err := img.dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to write png %q: %w", path, err)
	}
	return nil
}
