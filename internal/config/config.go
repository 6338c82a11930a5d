package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE []byte

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = "cliffordt.cue"

// Config is the decoded, fully concrete configuration.
type Config struct {
	Search Search `json:"search"`
	Table  Table  `json:"table"`
	Store  Store  `json:"store"`
	Batch  Batch  `json:"batch"`
}

// Search configures the grid search.
type Search struct {
	MaxDepth     int `json:"maxDepth"`
	MaxShellNorm int `json:"maxShellNorm"`
	Workers      int `json:"workers"`
	FactorBudget int `json:"factorBudget"`
}

// Table configures the exact-synthesis lookup table.
type Table struct {
	Path       string `json:"path"`
	MaxLength  int    `json:"maxLength"`
	ExploreSDE int    `json:"exploreSDE"`
}

// Store configures the SQLite store.
type Store struct {
	Path  string `json:"path"`
	Cache bool   `json:"cache"`
}

// Batch configures batch job execution.
type Batch struct {
	Concurrency    int     `json:"concurrency"`
	DefaultEpsilon float64 `json:"defaultEpsilon"`
}

// Error is a configuration error with source position.
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

// Default returns the schema defaults.
func Default() (Config, error) {
	return Parse(nil, "")
}

// Load reads and validates the config file at path. An empty path, or
// the default file name when it does not exist, yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && path == DefaultFile {
		return Default()
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse unifies src with the schema, requires every field to be concrete
// and decodes the result. filename is used in error positions.
func Parse(src []byte, filename string) (Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("config schema: %w", err)
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))

	if len(src) > 0 {
		user := ctx.CompileBytes(src, cue.Filename(filename))
		if err := user.Err(); err != nil {
			return Config{}, formatCUEError(err)
		}
		v = v.Unify(user)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, formatCUEError(err)
	}
	return cfg, nil
}

// formatCUEError keeps the first CUE error together with its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	field := "config"
	path := first.Path()
	if len(path) > 0 && path[0] == "#Config" {
		path = path[1:]
	}
	if len(path) > 0 {
		field = strings.Join(path, ".")
	}
	msg, args := first.Msg()
	e := &Error{Field: field, Message: fmt.Sprintf(msg, args...)}
	if positions := errors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}
