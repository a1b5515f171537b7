package cfgcore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/hsiuhsiu/cfgcore-go/internal/bindings"
)

// Config expresses the knobs of one opened Library. The zero value is valid:
// it verifies against the embedded interface description, serializes every
// call and logs nothing.
type Config struct {
	// ExpectedABIVersion pins the native ABI version. Empty accepts the
	// version in the embedded interface description.
	ExpectedABIVersion string `yaml:"expected_abi_version"`

	// Serialize forces one native call at a time even if the library
	// declares itself concurrent.
	Serialize bool `yaml:"serialize"`

	// MaxConcurrentCalls bounds in-flight calls for a concurrent library.
	MaxConcurrentCalls int `yaml:"max_concurrent_calls"`

	// CallRate limits native calls per second. Zero disables the limiter.
	CallRate float64 `yaml:"call_rate"`
	// CallBurst is the limiter burst.
	CallBurst int `yaml:"call_burst"`

	// LogLevel is used by NewLogger. Empty means "info".
	LogLevel string `yaml:"log_level"`

	// Logger receives the wrapper's logs. Nil disables logging.
	Logger *zap.Logger `yaml:"-"`
}

// LoadConfig reads a YAML config file. Unknown fields are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cfgcore: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a YAML config document.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("cfgcore: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.MaxConcurrentCalls < 0 {
		return fmt.Errorf("cfgcore: max_concurrent_calls must not be negative, got %d", c.MaxConcurrentCalls)
	}
	if c.CallRate < 0 {
		return fmt.Errorf("cfgcore: call_rate must not be negative, got %g", c.CallRate)
	}
	if c.CallBurst < 0 {
		return fmt.Errorf("cfgcore: call_burst must not be negative, got %d", c.CallBurst)
	}
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("cfgcore: log_level: %w", err)
		}
	}
	return nil
}

// NewLogger builds a production zap logger at LogLevel.
func (c Config) NewLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.LogLevel != "" {
		lvl, err := zapcore.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("cfgcore: log_level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}

func (c Config) toBindings() bindings.Config {
	return bindings.Config{
		ExpectedABIVersion: c.ExpectedABIVersion,
		Serialize:          c.Serialize,
		MaxConcurrentCalls: c.MaxConcurrentCalls,
		CallRate:           c.CallRate,
		CallBurst:          c.CallBurst,
		Logger:             c.Logger,
	}
}
