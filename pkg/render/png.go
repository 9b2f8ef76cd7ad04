package render

import (
	"fmt"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Alhassan777/arbor/pkg/model"
)

// WritePNG draws a scene as a PNG raster using the embedded Go font.
func WritePNG(w io.Writer, scene Scene) error {
	width := int(scene.Width)
	height := int(scene.Height)
	if width <= 0 || height <= 0 {
		width, height = Margin*2, Margin*2
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor(colorCanvas)
	dc.Clear()

	face, err := titleFace(14)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	for _, conn := range scene.Connections {
		dc.MoveTo(conn.P0.X, conn.P0.Y)
		dc.CubicTo(conn.P1.X, conn.P1.Y, conn.P2.X, conn.P2.Y, conn.P3.X, conn.P3.Y)
		dc.SetHexColor(colorConnector)
		dc.SetLineWidth(2)
		dc.Stroke()
		if conn.Label != "" {
			dc.SetHexColor(colorEdgeLabel)
			dc.DrawStringAnchored(conn.Label, conn.LabelAnchor.X, conn.LabelAnchor.Y, 0.5, 0.5)
		}
	}

	for _, n := range scene.Nodes {
		fill := colorNodeFill
		if n.Color != "" {
			fill = n.Color
		}

		drawNodeShape(dc, n)
		dc.SetHexColor(fill)
		dc.FillPreserve()
		dc.SetHexColor(colorNodeBorder)
		dc.SetLineWidth(2)
		dc.Stroke()

		dc.SetHexColor(colorTitle)
		dc.DrawStringAnchored(fitTitle(n.Title, int(n.Rect.Width)),
			n.Rect.X+n.Rect.Width/2, n.Rect.Y+n.Rect.Height/2, 0.5, 0.5)
	}

	return dc.EncodePNG(w)
}

func drawNodeShape(dc *gg.Context, n SceneNode) {
	r := n.Rect
	switch n.Shape {
	case model.ShapeRect:
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	case model.ShapePill:
		dc.DrawRoundedRectangle(r.X, r.Y, r.Width, r.Height, r.Height/2)
	case model.ShapeDiamond:
		dc.MoveTo(r.X+r.Width/2, r.Y)
		dc.LineTo(r.X+r.Width, r.Y+r.Height/2)
		dc.LineTo(r.X+r.Width/2, r.Y+r.Height)
		dc.LineTo(r.X, r.Y+r.Height/2)
		dc.ClosePath()
	default:
		dc.DrawRoundedRectangle(r.X, r.Y, r.Width, r.Height, 10)
	}
}

func titleFace(points float64) (font.Face, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size: points,
		DPI:  72,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face: %w", err)
	}
	return face, nil
}
