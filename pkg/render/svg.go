package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/Alhassan777/arbor/pkg/model"
)

// Default drawing colors, matched to the TUI palette.
const (
	colorCanvas     = "#282A36"
	colorNodeFill   = "#44475A"
	colorNodeBorder = "#BD93F9"
	colorTitle      = "#F8F8F2"
	colorConnector  = "#6272A4"
	colorEdgeLabel  = "#8BE9FD"
)

// WriteSVG draws a scene as an SVG document.
func WriteSVG(w io.Writer, scene Scene) error {
	width := int(scene.Width)
	height := int(scene.Height)
	if width <= 0 || height <= 0 {
		width, height = Margin*2, Margin*2
	}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:"+colorCanvas)

	// Connectors first so node bodies draw over the curve endpoints.
	for _, conn := range scene.Connections {
		path := fmt.Sprintf("M%.1f,%.1f C%.1f,%.1f %.1f,%.1f %.1f,%.1f",
			conn.P0.X, conn.P0.Y, conn.P1.X, conn.P1.Y,
			conn.P2.X, conn.P2.Y, conn.P3.X, conn.P3.Y)
		canvas.Path(path, "fill:none;stroke:"+colorConnector+";stroke-width:2")
		if conn.Label != "" {
			canvas.Text(int(conn.LabelAnchor.X), int(conn.LabelAnchor.Y),
				conn.Label,
				"fill:"+colorEdgeLabel+";font-size:12px;font-family:sans-serif;text-anchor:middle")
		}
	}

	for _, n := range scene.Nodes {
		fill := colorNodeFill
		if n.Color != "" {
			fill = n.Color
		}
		style := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2", fill, colorNodeBorder)
		x, y := int(n.Rect.X), int(n.Rect.Y)
		w, h := int(n.Rect.Width), int(n.Rect.Height)

		switch n.Shape {
		case model.ShapeRect:
			canvas.Rect(x, y, w, h, style)
		case model.ShapePill:
			canvas.Roundrect(x, y, w, h, h/2, h/2, style)
		case model.ShapeDiamond:
			xs := []int{x + w/2, x + w, x + w/2, x}
			ys := []int{y, y + h/2, y + h, y + h/2}
			canvas.Polygon(xs, ys, style)
		default: // ShapeRounded and the empty shape
			canvas.Roundrect(x, y, w, h, 10, 10, style)
		}

		canvas.Text(x+w/2, y+h/2+5, fitTitle(n.Title, w),
			"fill:"+colorTitle+";font-size:14px;font-family:sans-serif;text-anchor:middle")
	}

	canvas.End()
	return nil
}

// fitTitle trims a title to roughly fit a node width, assuming ~8px per
// glyph at the 14px label size.
func fitTitle(title string, width int) string {
	max := width / 8
	if max < 4 {
		max = 4
	}
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

// SnapshotOptions configures a diagram export.
type SnapshotOptions struct {
	// Path selects the output file; its extension picks the format unless
	// Format is set explicitly.
	Path string
	// Format is "svg" or "png"; empty means derive from Path.
	Format string
	Scene  Scene
}

// SaveSnapshot writes a scene to disk as SVG or PNG.
func SaveSnapshot(opts SnapshotOptions) error {
	format := opts.Format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(opts.Path), ".")
	}

	f, err := os.Create(opts.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.Path, err)
	}
	defer f.Close()

	switch format {
	case "svg":
		err = WriteSVG(f, opts.Scene)
	case "png":
		err = WritePNG(f, opts.Scene)
	default:
		return fmt.Errorf("unsupported snapshot format %q", format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", opts.Path, err)
	}
	return nil
}
