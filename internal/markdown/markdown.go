// Package markdown renders note content for the terminal.
package markdown

import (
	"strings"
	"sync"

	internalstrings "github.com/amonks/tasknotes/internal/strings"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Style selects a glamour style.
type Style string

const (
	StyleASCII Style = "ascii"
	StyleLight Style = "light"
	StyleDark  Style = "dark"
)

type renderer interface {
	Render(string) (string, error)
}

type rendererKey struct {
	style Style
	width int
}

var (
	rendererMu sync.Mutex
	renderers  = map[rendererKey]renderer{}
)

// Render formats markdown text for terminal output without color.
func Render(width, indent int, input []byte) []byte {
	return SafeRender(StyleASCII, width, indent, input)
}

// SafeRender formats markdown text in the given style. If the renderer
// fails or panics, the input is returned unformatted.
func SafeRender(style Style, width, indent int, input []byte) []byte {
	if len(input) == 0 {
		return nil
	}
	value := internalstrings.NormalizeNewlines(string(input))
	value = internalstrings.TrimTrailingNewlines(value)
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if width < 1 {
		width = 1
	}
	if indent < 0 {
		indent = 0
	}
	renderWidth := width - indent
	if renderWidth < 1 {
		renderWidth = 1
	}

	rendered := value
	if r := markdownRenderer(style, renderWidth); r != nil {
		if formatted, ok := renderRecovered(r, value); ok {
			rendered = formatted
		}
	}
	rendered = internalstrings.TrimTrailingNewlines(rendered)
	if strings.TrimSpace(rendered) == "" {
		return nil
	}
	if indent <= 0 {
		return []byte(rendered)
	}
	return []byte(indentBlock(rendered, indent))
}

func renderRecovered(r renderer, value string) (out string, ok bool) {
	defer func() {
		if recover() != nil {
			out, ok = "", false
		}
	}()
	formatted, err := r.Render(value)
	if err != nil {
		return "", false
	}
	return formatted, true
}

func styleConfig(style Style) ansi.StyleConfig {
	var config ansi.StyleConfig
	switch style {
	case StyleLight:
		config = styles.LightStyleConfig
	case StyleDark:
		config = styles.DarkStyleConfig
	default:
		config = styles.ASCIIStyleConfig
		config.Item.BlockPrefix = "- "
		config.ImageText.Format = "Image: {{.text}} ->"
	}
	return config
}

func markdownRenderer(style Style, width int) renderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	key := rendererKey{style: style, width: width}
	if cached, ok := renderers[key]; ok {
		return cached
	}
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(styleConfig(style)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[key] = created
	return created
}

func indentBlock(value string, spaces int) string {
	if spaces <= 0 {
		return value
	}
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
