// Package config loads and persists the global markup/discount
// configuration document, validating it against an embedded CUE schema
// before accepting it.
package config

import (
	"encoding/json"
	stdlibErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueErrors "cuelang.org/go/cue/errors"

	"github.com/shopspring/decimal"

	"github.com/laferre/catalogo/internal/model"
	"github.com/laferre/catalogo/internal/util"
)

// DefaultConfigPath is where catalogo.json lives when the caller doesn't
// name one explicitly.
const DefaultConfigPath = "catalogo.json"

// defaultMarginDefault and defaultFuzzyThreshold are the built-in fallback
// values used on ConfigMissing/ConfigParseError.
var (
	defaultMarginDefault  = decimal.NewFromInt(20)
	defaultFuzzyThreshold = 60
)

// ErrUnknownField reports a CUE validation failure caused by a field the
// schema doesn't allow.
type ErrUnknownField struct {
	Err error
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("unknown field in configuration: %v", e.Err)
}

func (e *ErrUnknownField) Unwrap() error {
	return e.Err
}

// Default returns the built-in configuration used when no document exists
// or the existing one fails to parse.
func Default() *model.GlobalConfig {
	return &model.GlobalConfig{
		PerSupplierMargins: map[string]model.SupplierConfig{},
		MarginDefault:      defaultMarginDefault,
		FuzzyThreshold:     defaultFuzzyThreshold,
		CurrencyCode:       "ARS",
	}
}

// Store serializes reads and writes of the config document through a
// mutex: concurrent UpdateMargin calls must not race on the persisted
// file.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  *model.GlobalConfig
}

// Open loads path (or falls back to the built-in default on
// ConfigMissing/ConfigParseError, both logged rather than fatal).
func Open(path string) *Store {
	if path == "" {
		path = DefaultConfigPath
	}
	cfg, err := load(path)
	if err != nil {
		util.LogError(util.Logger, util.WrapError(err, "config: falling back to defaults"))
		cfg = Default()
	}
	return &Store{path: path, cfg: cfg}
}

// Get returns a copy-by-value snapshot of the current config.
func (s *Store) Get() model.GlobalConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cfg
}

// UpdateMargin sets a supplier's markup/discount cascade and persists the
// document atomically. Persistence errors are returned to the caller so
// the in-memory config and the file on disk never diverge silently.
// Negative markup or discounts are rejected outright, matching the
// non-negative constraint the CUE schema enforces at load time.
func (s *Store) UpdateMargin(supplier string, markup, d1, d2 decimal.Decimal) error {
	if markup.IsNegative() || d1.IsNegative() || d2.IsNegative() {
		return util.NewError("margin values must be non-negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.PerSupplierMargins == nil {
		s.cfg.PerSupplierMargins = map[string]model.SupplierConfig{}
	}
	s.cfg.PerSupplierMargins[supplier] = model.SupplierConfig{
		MarkupPct:    markup,
		Discount1Pct: d1,
		Discount2Pct: d2,
	}
	return writeAtomic(s.path, s.cfg)
}

// WriteDefault writes the built-in default document to path, used by the
// `catalogo init` command.
func WriteDefault(path string) error {
	if path == "" {
		path = DefaultConfigPath
	}
	return writeAtomic(path, Default())
}

func load(path string) (*model.GlobalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config missing at %s: %w", path, err)
	}

	var cfg model.GlobalConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config parse error in %s: %w", path, err)
	}

	if err := validate(data); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate unifies the raw JSON document against the embedded CUE schema.
func validate(data []byte) error {
	ctx := cuecontext.New()
	schemaVal := ctx.CompileBytes(embeddedCueSchema, cue.Filename("config_schema.cue"))
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("failed to compile embedded CUE schema: %w", err)
	}

	docVal := ctx.CompileBytes(data, cue.Filename("catalogo.json"))
	if err := docVal.Err(); err != nil {
		return fmt.Errorf("failed to compile config document as CUE value: %w", err)
	}

	configDef := schemaVal.LookupPath(cue.ParsePath("#Config"))
	if !configDef.Exists() {
		return util.NewError("#Config definition not found in embedded schema")
	}

	instanceVal := configDef.Unify(docVal)
	if err := instanceVal.Err(); err != nil {
		return wrapUnknownField(err)
	}
	if err := instanceVal.Validate(cue.Concrete(true)); err != nil {
		return wrapUnknownField(err)
	}
	return nil
}

func wrapUnknownField(err error) error {
	var cueErrList cueErrors.Error
	if stdlibErrors.As(err, &cueErrList) {
		for _, single := range cueErrors.Errors(cueErrList) {
			detail := cueErrors.Details(single, nil)
			if strings.Contains(detail, "field not allowed") || strings.Contains(detail, "is not a field in") {
				return &ErrUnknownField{Err: err}
			}
		}
	}
	return fmt.Errorf("config validation failed: %w", err)
}

// writeAtomic marshals cfg pretty-printed and writes it via a temp file
// plus rename so a crash mid-write never leaves a truncated document.
func writeAtomic(path string, cfg *model.GlobalConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
