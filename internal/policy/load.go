package policy

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Load reads the client policy file on top of the defaults. Any read or decode
// failure is logged and the defaults are returned.
func Load(path string, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := Default()
	if err := DecodeFile(path, p); err != nil {
		logger.Warn("using built-in client policy", zap.String("path", path), zap.Error(err))
		return Default()
	}
	return p
}

// LoadExperience reads the client experience file; failures yield an empty list.
func LoadExperience(path string, logger *zap.Logger) *Experience {
	if logger == nil {
		logger = zap.NewNop()
	}
	exp := &Experience{}
	if err := DecodeFile(path, exp); err != nil {
		logger.Warn("no client experience loaded", zap.String("path", path), zap.Error(err))
		return &Experience{}
	}
	return exp
}

// DecodeFile reads a JSON, YAML or TOML file with a private viper instance and
// decodes it onto target.
func DecodeFile(path string, target any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is not configured")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return Decode(v.AllSettings(), target)
}

// Decode copies a generic settings map onto target. Keys absent from the map keep
// the values already present in target; a configured list replaces the existing
// one as a whole.
func Decode(settings map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
		ZeroFields:       true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
