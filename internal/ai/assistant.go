package ai

import (
	"context"
	"strings"

	"github.com/spigell/tender-bid/internal/pipeline"
	"go.uber.org/zap"
)

// Brief is a short cover note written for a decision record.
type Brief struct {
	Headline string
	Summary  string
	Risks    []string
	// Consistent reports whether the narrator agrees with the recommendation.
	Consistent bool
	Raw        string
}

// Narrator writes a Brief for a finished decision record.
type Narrator interface {
	Narrate(ctx context.Context, rec *pipeline.Record) (*Brief, error)
}

// Text renders the brief as plain text.
func (b *Brief) Text() string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	if b.Headline != "" {
		sb.WriteString(b.Headline)
	}
	if b.Summary != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(b.Summary)
	}
	if len(b.Risks) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("Risks:")
		for _, r := range b.Risks {
			sb.WriteString("\n- ")
			sb.WriteString(r)
		}
	}
	return sb.String()
}

// Annotate asks n for a brief and stores it on rec. Errors are logged and
// leave rec untouched. A nil narrator is a no-op.
func Annotate(ctx context.Context, n Narrator, rec *pipeline.Record, logger *zap.Logger) {
	if n == nil || rec == nil || rec.SelectedRFP == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	brief, err := n.Narrate(ctx, rec)
	if err != nil {
		logger.Warn("bid brief generation failed", zap.String("run_id", rec.RunID), zap.Error(err))
		return
	}
	if !brief.Consistent {
		logger.Warn("bid brief disagrees with recommendation",
			zap.String("run_id", rec.RunID),
			zap.String("recommendation", rec.Recommendation),
		)
	}
	rec.Brief = brief.Text()
}
