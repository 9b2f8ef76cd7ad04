package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# arbor

## Navigation

| Key | Action |
|-----|--------|
| j/↓, k/↑ | move cursor |
| g, G | jump to top / bottom |
| / | fuzzy search titles |

## Editing

| Key | Action |
|-----|--------|
| c | create child under cursor |
| r | rename node |
| d | delete node and its subtree |
| m | pick up node, then Enter on the new parent |
| l | edit the connector label |
| C | set node color (hex) |
| s | cycle node shape |
| p | pin node at its current position |
| P | unpin a manually positioned node |

## Other

| Key | Action |
|-----|--------|
| y | copy node URL to clipboard |
| o | sync conversations from the session export |
| e / E | export diagram as SVG / PNG |
| ? | toggle this help |
| q | quit |
`

// RenderHelp renders the help text for the given width. Falls back to the
// raw markdown if the terminal renderer cannot be built.
func RenderHelp(width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
