package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/komsit37/sfa/pkg/sfa/types"
)

// symsRenderer prints included symbols in a single comma-separated line.
type symsRenderer struct{}

func NewSymsRenderer() Renderer {
	return symsRenderer{}
}

func (symsRenderer) Render(w io.Writer, reports []types.Report, _ RenderOptions) error {
	symbols := make([]string, 0, len(reports))
	for _, rep := range reports {
		if !rep.Included() {
			continue
		}
		symbols = append(symbols, rep.Symbol)
	}
	_, err := fmt.Fprintln(w, strings.Join(symbols, ","))
	return err
}
