// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"errors"
	"io"
	"io/fs"
	"net/netip"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/z5labs/tigernet/config/key"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpConfig struct {
	Addr    string        `config:"addr"`
	Timeout time.Duration `config:"timeout"`
	Host    netip.Addr    `config:"host"`
}

type appConfig struct {
	Name    string     `config:"name"`
	Workers int        `config:"workers"`
	Debug   bool       `config:"debug"`
	HTTP    httpConfig `config:"http"`
}

func TestRead(t *testing.T) {
	t.Run("will override values", func(t *testing.T) {
		t.Run("if a later source sets the same key", func(t *testing.T) {
			m, err := Read(
				Map{"name": "first", "http": map[string]any{"addr": ":80"}},
				Map{"name": "second"},
			)
			require.Nil(t, err)

			var cfg appConfig
			err = m.Unmarshal(&cfg)
			require.Nil(t, err)
			require.Equal(t, "second", cfg.Name)
			require.Equal(t, ":80", cfg.HTTP.Addr)
		})
	})

	t.Run("will override values regardless of case", func(t *testing.T) {
		t.Run("if a later source spells the key differently", func(t *testing.T) {
			m, err := Read(
				Map{"http": map[string]any{"adminAddr": ":9090"}},
				Map{"HTTP": map[string]any{"adminaddr": ":9191"}},
			)
			require.Nil(t, err)

			v, ok := m.Get(key.Parse("http.adminAddr"))
			require.True(t, ok)
			require.Equal(t, ":9191", v)
		})
	})

	t.Run("will merge nested keys", func(t *testing.T) {
		t.Run("if sources set different keys under the same parent", func(t *testing.T) {
			m, err := Read(
				Map{"http": map[string]any{"addr": ":8080"}},
				Map{"http": Map{"timeout": "5s"}},
			)
			require.Nil(t, err)

			addr, ok := m.Get(key.Parse("http.addr"))
			require.True(t, ok)
			require.Equal(t, ":8080", addr)

			timeout, ok := m.Get(key.Chain{key.Name("http"), key.Name("timeout")})
			require.True(t, ok)
			require.Equal(t, "5s", timeout)
		})
	})

	t.Run("will return a SourceError", func(t *testing.T) {
		t.Run("if a source fails to apply", func(t *testing.T) {
			applyErr := errors.New("failed to apply")
			_, err := Read(
				Map{"name": "first"},
				SourceFunc(func(Store) error { return applyErr }),
			)

			var serr SourceError
			require.ErrorAs(t, err, &serr)
			require.Equal(t, 1, serr.Index)
			require.ErrorIs(t, err, applyErr)
		})

		t.Run("if a key is nested under a non map value", func(t *testing.T) {
			_, err := Read(
				Map{"http": "not a map"},
				Map{"http": map[string]any{"addr": ":80"}},
			)

			var kerr UnexpectedKeyValueTypeError
			require.ErrorAs(t, err, &kerr)
			require.Equal(t, "http", kerr.Key)
		})

		t.Run("if the key is empty", func(t *testing.T) {
			_, err := Read(SourceFunc(func(s Store) error {
				return s.Set(key.Chain{}, "value")
			}))

			var kerr EmptyKeyError
			require.ErrorAs(t, err, &kerr)
		})
	})
}

func TestManager_Unmarshal(t *testing.T) {
	t.Run("will weakly convert strings", func(t *testing.T) {
		t.Run("if the field is numeric or boolean", func(t *testing.T) {
			m, err := Read(Map{"workers": "4", "debug": "true"})
			require.Nil(t, err)

			var cfg appConfig
			err = m.Unmarshal(&cfg)
			require.Nil(t, err)
			require.Equal(t, 4, cfg.Workers)
			require.True(t, cfg.Debug)
		})
	})

	t.Run("will decode durations", func(t *testing.T) {
		testCases := []struct {
			Name     string
			Value    any
			Expected time.Duration
		}{
			{Name: "string", Value: "1m30s", Expected: 90 * time.Second},
			{Name: "int", Value: int(time.Second), Expected: time.Second},
			{Name: "float64", Value: float64(time.Millisecond), Expected: time.Millisecond},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				m, err := Read(Map{"http": map[string]any{"timeout": testCase.Value}})
				require.Nil(t, err)

				var cfg appConfig
				err = m.Unmarshal(&cfg)
				require.Nil(t, err)
				require.Equal(t, testCase.Expected, cfg.HTTP.Timeout)
			})
		}
	})

	t.Run("will decode text unmarshalers", func(t *testing.T) {
		t.Run("if the value is a string", func(t *testing.T) {
			m, err := Read(Map{"http": map[string]any{"host": "127.0.0.1"}})
			require.Nil(t, err)

			var cfg appConfig
			err = m.Unmarshal(&cfg)
			require.Nil(t, err)
			require.Equal(t, netip.MustParseAddr("127.0.0.1"), cfg.HTTP.Host)
		})
	})

	t.Run("will return a TypeCoercionError", func(t *testing.T) {
		t.Run("if a duration can not be parsed", func(t *testing.T) {
			m, err := Read(Map{"http": map[string]any{"timeout": "soon"}})
			require.Nil(t, err)

			var cfg appConfig
			err = m.Unmarshal(&cfg)

			var terr TypeCoercionError
			require.ErrorAs(t, err, &terr)
		})

		t.Run("if a text unmarshaler fails", func(t *testing.T) {
			m, err := Read(Map{"http": map[string]any{"host": "not an ip"}})
			require.Nil(t, err)

			var cfg appConfig
			err = m.Unmarshal(&cfg)

			var terr TypeCoercionError
			require.ErrorAs(t, err, &terr)
		})
	})
}

func TestEnv_Apply(t *testing.T) {
	environ := func() []string {
		return []string{
			"APP_NAME=tigernet",
			"APP_HTTP_ADDR=:9090",
			"APP_=ignored",
			"OTHER_NAME=other",
			"MALFORMED",
		}
	}

	t.Run("will set every variable verbatim", func(t *testing.T) {
		t.Run("if no prefix is configured", func(t *testing.T) {
			m, err := Read(Env{environ: environ})
			require.Nil(t, err)

			v, ok := m.Get(key.Name("OTHER_NAME"))
			require.True(t, ok)
			require.Equal(t, "other", v)

			_, ok = m.Get(key.Name("MALFORMED"))
			require.False(t, ok)
		})
	})

	t.Run("will nest keys", func(t *testing.T) {
		t.Run("if a prefix is configured", func(t *testing.T) {
			env := Env{environ: environ}
			Prefix("APP_")(&env)

			m, err := Read(env)
			require.Nil(t, err)

			var cfg appConfig
			err = m.Unmarshal(&cfg)
			require.Nil(t, err)
			require.Equal(t, "tigernet", cfg.Name)
			require.Equal(t, ":9090", cfg.HTTP.Addr)

			_, ok := m.Get(key.Name("other"))
			require.False(t, ok)
		})
	})
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestJson_Apply(t *testing.T) {
	t.Run("will close the reader", func(t *testing.T) {
		t.Run("if it implements io.Closer", func(t *testing.T) {
			r := &closeRecorder{Reader: strings.NewReader(`{"name":"json","http":{"addr":":80"}}`)}

			m, err := Read(FromJson(r))
			require.Nil(t, err)
			require.True(t, r.closed)

			var cfg appConfig
			err = m.Unmarshal(&cfg)
			require.Nil(t, err)
			require.Equal(t, "json", cfg.Name)
			require.Equal(t, ":80", cfg.HTTP.Addr)
		})
	})

	t.Run("will return an InvalidFormatError", func(t *testing.T) {
		t.Run("if the content is not valid json", func(t *testing.T) {
			_, err := Read(FromJson(strings.NewReader(`{`)))

			var ferr InvalidFormatError
			require.ErrorAs(t, err, &ferr)
			require.Equal(t, "json", ferr.Format)
		})
	})
}

func TestYaml_Apply(t *testing.T) {
	t.Run("will apply nested values", func(t *testing.T) {
		t.Run("if the content is valid yaml", func(t *testing.T) {
			src := FromYaml(strings.NewReader("name: yaml\nworkers: 2\nhttp:\n  addr: \":8080\"\n  timeout: 10s\n"))

			m, err := Read(src)
			require.Nil(t, err)

			var cfg appConfig
			err = m.Unmarshal(&cfg)
			require.Nil(t, err)
			require.Equal(t, "yaml", cfg.Name)
			require.Equal(t, 2, cfg.Workers)
			require.Equal(t, ":8080", cfg.HTTP.Addr)
			require.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
		})
	})

	t.Run("will return an InvalidFormatError", func(t *testing.T) {
		t.Run("if the content is not valid yaml", func(t *testing.T) {
			_, err := Read(FromYaml(strings.NewReader("name: [")))

			var ferr InvalidFormatError
			require.ErrorAs(t, err, &ferr)
			require.Equal(t, "yaml", ferr.Format)
		})
	})
}

type fsFunc func(string) (fs.File, error)

func (f fsFunc) Open(path string) (fs.File, error) {
	return f(path)
}

func TestFileReader_Read(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the fs.FS fails to open the file", func(t *testing.T) {
			openErr := errors.New("failed to open")
			fsys := fsFunc(func(s string) (fs.File, error) {
				return nil, openErr
			})

			r := NewFileReader(fsys, "config.yaml")
			_, err := io.ReadAll(r)
			if !assert.ErrorIs(t, err, openErr) {
				return
			}

			_, err = io.ReadAll(r)
			if !assert.ErrorIs(t, err, openErr) {
				return
			}
		})
	})

	t.Run("will be usable as a yaml source", func(t *testing.T) {
		t.Run("if the file exists", func(t *testing.T) {
			fsys := fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("name: file\n")},
			}

			m, err := Read(FromYaml(NewFileReader(fsys, "config.yaml")))
			require.Nil(t, err)

			var cfg appConfig
			err = m.Unmarshal(&cfg)
			require.Nil(t, err)
			require.Equal(t, "file", cfg.Name)
		})
	})
}

func TestFileReader_Close(t *testing.T) {
	t.Run("will not return an error", func(t *testing.T) {
		t.Run("if Close is called before the underlying file has been opened", func(t *testing.T) {
			fsys := fsFunc(func(s string) (fs.File, error) {
				return nil, nil
			})

			r := NewFileReader(fsys, "config.yaml")
			err := r.Close()
			if !assert.Nil(t, err) {
				return
			}
		})
	})
}
