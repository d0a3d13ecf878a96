// Package discovery supplies candidate tenders to the pipeline. Every source
// finishes its I/O before the pipeline starts.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/tender-bid/internal/tender"
)

const (
	KindFile     = "file"
	KindPortal   = "portal"
	KindPostgres = "postgres"
	KindSample   = "sample"
	KindAPI      = "api"
)

// Source returns the current candidate pool.
type Source interface {
	Discover(ctx context.Context) (*tender.Tenders, error)
}

// decodeTenders maps loosely typed JSON items onto tenders using their json tags.
func decodeTenders(items any, source string) (*tender.Tenders, error) {
	var list []*tender.Tender
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &list,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode tenders: %w", err)
	}

	out := make([]*tender.Tender, 0, len(list))
	for _, t := range list {
		if t == nil || strings.TrimSpace(t.ID) == "" {
			continue
		}
		if t.Source == "" {
			t.Source = source
		}
		out = append(out, t)
	}
	return tender.NewTenders(out...), nil
}
