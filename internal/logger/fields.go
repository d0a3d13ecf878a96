package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldTenderID is the structured log field key for the tender identifier.
	FieldTenderID = "tender_id"
	// FieldStage is the structured log field key for the pipeline stage name.
	FieldStage = "stage"
	// FieldItemNo is the structured log field key for a scope item number.
	FieldItemNo = "item_no"
	// FieldSKU is the structured log field key for a catalog SKU.
	FieldSKU = "sku"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// TenderFields returns the stage and tender id fields, skipping empty values.
func TenderFields(stage, tenderID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldStage, Value: stage},
		StringField{Key: FieldTenderID, Value: tenderID},
	)
}

// WithTenderFields attaches the stage and tender id to the provided logger.
func WithTenderFields(logger *zap.Logger, stage, tenderID string) *zap.Logger {
	return WithFields(logger, TenderFields(stage, tenderID)...)
}
