package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spigell/tender-bid/internal/matching"
)

// RequestFileName is REQUEST_<tender>_ITEM_<n>.md.
func RequestFileName(r matching.NewProductRequest) string {
	return fmt.Sprintf("REQUEST_%s_ITEM_%d.md", r.TenderID, r.ItemNo)
}

// RequestMarkdown renders a new-product request with its gap table.
func RequestMarkdown(r matching.NewProductRequest) string {
	lines := []string{
		fmt.Sprintf("# New SKU Request - Tender %s | Item %d", r.TenderID, r.ItemNo),
		"",
		fmt.Sprintf("Description: %s", r.Description),
		fmt.Sprintf("Closest SKU: %s (Match: %g%%)", r.ClosestSKU, r.ClosestMatchScore),
		"",
		"## RFP Specs vs Closest Product",
		"",
		"| Parameter | RFP | Closest Product |",
		"|---|---|---|",
	}
	for _, g := range r.Gaps {
		lines = append(lines, fmt.Sprintf("| %s | %s | %s |", g.Parameter, g.RFP, g.Closest))
	}
	if len(r.Gaps) == 0 {
		lines = append(lines, "| All | Matching/Comparable | Matching/Comparable |")
	}
	lines = append(lines, "", "## Recommendation", r.Recommendation)
	return strings.Join(lines, "\n")
}

// RequestWriter stores requests as markdown files under Dir.
type RequestWriter struct {
	Dir string
}

func NewRequestWriter(dir string) *RequestWriter {
	return &RequestWriter{Dir: dir}
}

func (w *RequestWriter) Write(_ context.Context, r matching.NewProductRequest) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create requests dir: %w", err)
	}
	path := filepath.Join(w.Dir, sanitize(RequestFileName(r)))
	if err := os.WriteFile(path, []byte(RequestMarkdown(r)), 0o644); err != nil {
		return fmt.Errorf("write request %s: %w", path, err)
	}
	return nil
}

// sanitize keeps tender ids with slashes from escaping the directory.
func sanitize(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name)
}
