package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/komsit37/sfa/pkg/sfa/columns"
	"github.com/komsit37/sfa/pkg/sfa/types"
)

// Renderer renders symbol reports to an output writer.
type Renderer interface {
	Render(w io.Writer, reports []types.Report, opts RenderOptions) error
}

type RenderOptions struct {
	Columns     []columns.Def
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
}

// Formats lists the names accepted by New.
var Formats = []string{"table", "detail", "json", "csv", "syms"}

// New returns the renderer for a format name.
func New(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "table", "":
		return NewTableRenderer(), nil
	case "detail":
		return NewDetailRenderer(), nil
	case "json":
		return NewJSONRenderer(), nil
	case "csv":
		return NewCSVRenderer(), nil
	case "syms":
		return NewSymsRenderer(), nil
	}
	return nil, fmt.Errorf("unsupported format: %s (allowed: %s)", format, strings.Join(Formats, ", "))
}
