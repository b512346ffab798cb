// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/z5labs/tigernet/internal/try"

	"gopkg.in/yaml.v3"
)

// Json represents a Source where its underlying format is JSON.
type Json struct {
	r io.Reader
}

// FromJson returns a source which will apply its config
// from JSON values parsed from the given io.Reader.
// The reader is closed after being read if it is an io.Closer.
func FromJson(r io.Reader) Json {
	return Json{r: r}
}

// Apply implements the Source interface.
func (src Json) Apply(store Store) error {
	return decode(store, src.r, "json", json.Unmarshal)
}

// Yaml represents a Source where its underlying format is YAML.
type Yaml struct {
	r io.Reader
}

// FromYaml returns a source which will apply its config
// from YAML values parsed from the given io.Reader.
// The reader is closed after being read if it is an io.Closer.
func FromYaml(r io.Reader) Yaml {
	return Yaml{r: r}
}

// Apply implements the Source interface.
func (src Yaml) Apply(store Store) error {
	return decode(store, src.r, "yaml", yaml.Unmarshal)
}

// InvalidFormatError occurs if the underlying io.Reader contains
// content which can not be parsed in the expected format.
type InvalidFormatError struct {
	Format string
	Cause  error
}

// Error implements the [builtin.error] interface.
func (e InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Format, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidFormatError) Unwrap() error {
	return e.Cause
}

func decode(store Store, r io.Reader, format string, unmarshal func([]byte, any) error) (err error) {
	defer try.Close(&err, r)

	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m := make(map[string]any)
	err = unmarshal(b, &m)
	if err != nil {
		return InvalidFormatError{Format: format, Cause: err}
	}
	return Map(m).Apply(store)
}
