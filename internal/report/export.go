package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/pipeline"
)

const baseName = "pipeline_results"

// Exporter writes every export format of a record into Dir.
type Exporter struct {
	Dir    string
	logger *zap.Logger
}

func NewExporter(dir string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{Dir: dir, logger: logger}
}

// Export writes JSON, CSV, text and XLSX files and returns the paths written.
// A failing format is logged and skipped.
func (e *Exporter) Export(rec *pipeline.Record) []string {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		e.logger.Warn("export skipped", zap.String("dir", e.Dir), zap.Error(err))
		return nil
	}

	renderers := []struct {
		ext    string
		render func() ([]byte, error)
	}{
		{".json", func() ([]byte, error) { return buffer(rec, WriteJSON) }},
		{".csv", func() ([]byte, error) { return buffer(rec, WriteCSV) }},
		{".txt", func() ([]byte, error) { return buffer(rec, WriteText) }},
		{".xlsx", func() ([]byte, error) { return Workbook(rec) }},
	}

	var written []string
	for _, r := range renderers {
		path := filepath.Join(e.Dir, baseName+r.ext)
		data, err := r.render()
		if err == nil {
			err = os.WriteFile(path, data, 0o644)
		}
		if err != nil {
			e.logger.Warn("export failed", zap.String("path", path), zap.Error(err))
			continue
		}
		written = append(written, path)
	}

	e.logger.Info("exports written", zap.Strings("paths", written))
	return written
}

func buffer(rec *pipeline.Record, write func(io.Writer, *pipeline.Record) error) ([]byte, error) {
	var b bytes.Buffer
	if err := write(&b, rec); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return b.Bytes(), nil
}
