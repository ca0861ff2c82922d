// Package config loads termql configuration from CUE.
//
// A configuration file is unified with the embedded #Config schema, which
// supplies defaults and rejects unknown fields:
//
//	database: "snomed.db"
//	cache: size: 4096
//	validation: checkDigits: true
package config

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/termql/internal/validate"
)

//go:embed schema.cue
var schemaCUE string

// Config is the decoded configuration.
type Config struct {
	Database   string     `json:"database"`
	Cache      Cache      `json:"cache"`
	Log        Log        `json:"log"`
	Validation Validation `json:"validation"`
	Search     Search     `json:"search"`
}

// Cache configures the compiled query cache.
type Cache struct {
	Size int `json:"size"`
}

// Log configures logging.
type Log struct {
	Level string `json:"level"`
}

// Validation mirrors validate.Options.
type Validation struct {
	MinTermLength int  `json:"minTermLength"`
	MinIDLength   int  `json:"minIDLength"`
	MaxIDLength   int  `json:"maxIDLength"`
	CheckDigits   bool `json:"checkDigits"`
}

// Search configures the search facade.
type Search struct {
	MaxResults int `json:"maxResults"`
}

// Error is a configuration error with its CUE source position.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the configuration of an empty file.
func Default() *Config {
	cfg, err := Parse("", nil)
	if err != nil {
		// The embedded schema always has defaults.
		panic(err)
	}
	return cfg
}

// Load reads the CUE file at path. An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, data)
}

// Parse unifies src with the schema and decodes the result. filename is
// used in error positions only.
func Parse(filename string, src []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	file := ctx.CompileBytes(src, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := def.Unify(file)
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, formatCUEError(err)
	}
	return &cfg, nil
}

// ValidationOptions returns the validator options.
func (c *Config) ValidationOptions() validate.Options {
	return validate.Options{
		MinTermLength: c.Validation.MinTermLength,
		MinIDLength:   c.Validation.MinIDLength,
		MaxIDLength:   c.Validation.MaxIDLength,
		CheckDigits:   c.Validation.CheckDigits,
	}
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel()}))
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	first := errs[0]
	field := strings.Join(first.Path(), ".")
	if field == "" {
		field = "config"
	}
	format, args := first.Msg()
	cfgErr := &Error{Field: field, Message: fmt.Sprintf(format, args...)}
	if positions := errors.Positions(first); len(positions) > 0 {
		cfgErr.Pos = positions[0]
	}
	return cfgErr
}
