package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/tender-bid/internal/ai"
	"github.com/spigell/tender-bid/internal/pipeline"
	"github.com/spigell/tender-bid/internal/utils"
	"go.uber.org/zap"
)

const systemInstruction = "You write concise, factual bid briefs. Answer with a single JSON object."

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

type Narrator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

var _ ai.Narrator = (*Narrator)(nil)

func NewNarrator(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Narrator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Narrator{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (n *Narrator) Narrate(ctx context.Context, rec *pipeline.Record) (*ai.Brief, error) {
	if rec == nil || rec.SelectedRFP == nil {
		return nil, errors.New("decision record with a selected tender is required")
	}

	recordJSON, err := json.MarshalIndent(briefPayload(rec), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal record payload: %w", err)
	}

	prompt := buildPrompt(string(recordJSON))

	n.logger.Debug("gemini generate content request",
		zap.String("tender_id", rec.SelectedRFP.TenderID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, n.maxLogLen)),
	)

	raw, err := n.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	n.logger.Debug("gemini generate content response",
		zap.String("tender_id", rec.SelectedRFP.TenderID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, n.maxLogLen)),
	)

	brief, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	brief.Raw = raw
	return brief, nil
}

// briefPayload keeps the parts of the record the model needs.
func briefPayload(rec *pipeline.Record) map[string]any {
	payload := map[string]any{
		"recommendation":              rec.Recommendation,
		"tender":                      rec.SelectedRFP,
		"engineering_action_required": rec.EngineeringActionRequired,
	}
	if rec.Decision != nil {
		payload["decision"] = rec.Decision
	}
	if rec.Overall != nil {
		payload["products"] = rec.Overall.OEMProducts
		payload["tests"] = rec.Overall.TestsRequired
		payload["grand_total"] = rec.Overall.GrandTotal
	}
	if len(rec.NewProductRequests) > 0 {
		gaps := make([]string, 0, len(rec.NewProductRequests))
		for _, r := range rec.NewProductRequests {
			gaps = append(gaps, fmt.Sprintf("item %d: closest %s at %.2f%%", r.ItemNo, r.ClosestSKU, r.ClosestMatchScore))
		}
		payload["new_sku_requests"] = gaps
	}
	return payload
}

func buildPrompt(recordJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Decision record:\n{{RECORD_JSON}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{RECORD_JSON}}", recordJSON)
}

func parseResponse(raw string) (*ai.Brief, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	brief := &ai.Brief{
		Headline:   coerceString(data["headline"]),
		Summary:    coerceString(data["summary"]),
		Risks:      coerceStrings(data["risks"]),
		Consistent: true,
	}
	if v, ok := data["consistent"]; ok {
		brief.Consistent = coerceBool(v)
	}
	if brief.Headline == "" && brief.Summary == "" {
		return nil, errors.New("gemini response has no headline or summary")
	}
	return brief, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return nil
}
