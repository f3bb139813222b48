package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Load reads the configuration at path on top of Default and validates it.
// The format is chosen by extension.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{Code: ErrCodeNotFound, Path: path, Message: err.Error(), Err: err}
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = decodeYAML(path, data)
	case ".cue", ".json":
		cfg, err = decodeCUE(path, data)
	default:
		return Config{}, &LoadError{
			Code:    ErrCodeUnsupportedFormat,
			Path:    path,
			Message: fmt.Sprintf("unknown extension %q (want .yaml, .yml, .cue or .json)", filepath.Ext(path)),
		}
	}
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, &LoadError{Code: ErrCodeSchemaViolation, Path: path, Message: err.Error(), Err: err}
	}
	return cfg, nil
}

// decodeYAML decodes strictly: unknown fields are errors.
func decodeYAML(path string, data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error(), Err: err}
	}
	return cfg, nil
}

// decodeCUE unifies the file with #Config and decodes the result through
// its JSON form.
func decodeCUE(path string, data []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile embedded schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return Config{}, cueLoadError(ErrCodeParseFailed, path, err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, cueLoadError(ErrCodeSchemaViolation, path, err)
	}

	out, err := unified.MarshalJSON()
	if err != nil {
		return Config{}, cueLoadError(ErrCodeSchemaViolation, path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(out, &cfg); err != nil {
		return Config{}, &LoadError{Code: ErrCodeSchemaViolation, Path: path, Message: err.Error(), Err: err}
	}
	return cfg, nil
}

// cueLoadError converts a CUE error, keeping the first error's position.
func cueLoadError(code LoadErrorCode, path string, err error) *LoadError {
	var pos token.Pos
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		pos = errs[0].Position()
	}
	return &LoadError{
		Code:    code,
		Path:    path,
		Message: strings.TrimSpace(cueerrors.Details(err, nil)),
		Pos:     pos,
		Err:     err,
	}
}
