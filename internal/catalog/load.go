package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/fallback"
)

// Options select the catalog sources.
type Options struct {
	DatasheetsDir string
	File          string
	MergeBuiltin  bool
}

// Load builds the catalog from the first source that yields products: the
// datasheets directory, then the JSON catalog file, then the built-in variants.
// It never fails.
func Load(opts Options, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}

	products, source, err := fallback.First(logger,
		fallback.Loader[[]Product]{Name: "datasheets", Load: func() ([]Product, error) {
			return LoadDatasheets(opts.DatasheetsDir, logger)
		}},
		fallback.Loader[[]Product]{Name: "json", Load: func() ([]Product, error) {
			return LoadJSON(opts.File)
		}},
		fallback.Static("builtin", Builtin()),
	)
	if err != nil {
		products, source = Builtin(), "builtin"
	}

	c := New(source, products)
	if opts.MergeBuiltin && source != "builtin" {
		c = c.MergeMissing(Builtin())
	}

	if !c.hasLowVoltage() {
		c = c.MergeMissing([]Product{lowVoltageControl()})
	}

	logger.Info("catalog loaded", zap.String("source", c.Source), zap.Int("products", c.Len()))
	return c
}

func (c *Catalog) hasLowVoltage() bool {
	for _, p := range c.products {
		if strings.Contains(p.Spec.Voltage, "440V") {
			return true
		}
	}
	return false
}

// LoadDatasheets parses every *.md, *.html and *.htm file in dir, sorted by name.
// Files that fail to read are skipped with a warning.
func LoadDatasheets(dir string, logger *zap.Logger) ([]Product, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fallback.ErrNoResult
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fallback.ErrNoResult
		}
		return nil, fmt.Errorf("read datasheets dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var products []Product
	for _, name := range names {
		path := filepath.Join(dir, name)
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".md" && ext != ".html" && ext != ".htm" {
			continue
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping datasheet", zap.String("path", path), zap.Error(err))
			continue
		}

		text := string(raw)
		if ext != ".md" {
			text, err = HTMLText(raw)
			if err != nil {
				logger.Warn("skipping datasheet", zap.String("path", path), zap.Error(err))
				continue
			}
		}

		products = append(products, ParseDatasheet(name, text))
	}

	if len(products) == 0 {
		return nil, fallback.ErrNoResult
	}
	return products, nil
}

// LoadJSON reads a product list, either a bare array or {"products": [...]}.
func LoadJSON(path string) ([]Product, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fallback.ErrNoResult
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fallback.ErrNoResult
		}
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		var wrapped struct {
			Products []Product `json:"products"`
		}
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decode catalog file: %w", err)
		}
		products = wrapped.Products
	}

	if len(products) == 0 {
		return nil, fallback.ErrNoResult
	}
	return products, nil
}
