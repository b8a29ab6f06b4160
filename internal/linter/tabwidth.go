package linter

import (
	"strconv"
	"sync"

	"github.com/editorconfig/editorconfig-core-go/v2"
)

// TabWidths resolves the display width of tabs per file from .editorconfig
// (tab_width, else a numeric indent_size), falling back to a default.
// Lookups are cached and safe for concurrent use.
type TabWidths struct {
	fallback int

	mu    sync.Mutex
	cache map[string]int
}

// NewTabWidths returns a resolver that uses fallback when no .editorconfig
// setting applies.
func NewTabWidths(fallback int) *TabWidths {
	return &TabWidths{fallback: fallback, cache: make(map[string]int)}
}

// For returns the tab width for path.
func (t *TabWidths) For(path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if w, ok := t.cache[path]; ok {
		return w
	}
	w := t.fallback
	if def, err := editorconfig.GetDefinitionForFilename(path); err == nil && def != nil {
		switch {
		case def.TabWidth > 0:
			w = def.TabWidth
		default:
			if n, err := strconv.Atoi(def.IndentSize); err == nil && n > 0 {
				w = n
			}
		}
	}
	t.cache[path] = w
	return w
}
