// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package bind maps parts of an inbound HTTP request onto typed values.
package bind

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Kind identifies which part of a request a value is read from.
type Kind int

const (
	KindBody Kind = iota + 1
	KindHeader
	KindRoute
	KindQuery
)

// Source marks where a parameter is read from.
type Source struct {
	Kind Kind

	// Key is the header name for [KindHeader] and empty otherwise.
	Key string
}

// String implements the [fmt.Stringer] interface.
func (s Source) String() string {
	switch s.Kind {
	case KindBody:
		return "body"
	case KindHeader:
		return fmt.Sprintf("header(%s)", s.Key)
	case KindRoute:
		return "route"
	case KindQuery:
		return "query"
	default:
		return "none"
	}
}

// Body reads the entire request payload as JSON.
func Body() Source {
	return Source{Kind: KindBody}
}

// Header reads the value of the named request header.
func Header(key string) Source {
	return Source{Kind: KindHeader, Key: http.CanonicalHeaderKey(key)}
}

// Route reads the last segment of the request path. Since only the last
// segment is available, at most one route bound parameter per action is
// meaningful.
func Route() Source {
	return Source{Kind: KindRoute}
}

// Query reads the query string. Struct and map targets receive the whole
// query string, any other target receives the value keyed by the parameter
// name.
func Query() Source {
	return Source{Kind: KindQuery}
}

// Param describes a single bindable value.
type Param struct {
	Name string

	// From lists the sources attached to the parameter. No sources means
	// the parameter is not read from the request and binds to its zero
	// value. More than one source is invalid.
	From []Source

	// Optional parameters bind to their zero value instead of failing
	// when their source is empty.
	Optional bool

	Type reflect.Type
}

// Named returns a required Param read from the given sources.
func Named(name string, from ...Source) Param {
	return Param{
		Name: name,
		From: from,
	}
}

// AsOptional returns a copy of p which tolerates an empty source.
func (p Param) AsOptional() Param {
	p.Optional = true
	return p
}

// Binder binds parameters for a single request.
//
// A Binder must not be shared between requests. The request body is read
// at most once and cached for every body bound parameter.
type Binder struct {
	r *http.Request

	bodyRead bool
	body     []byte
	bodyErr  error
}

// NewBinder returns a Binder for the given request.
func NewBinder(r *http.Request) *Binder {
	return &Binder{r: r}
}

// Bind binds every parameter, strictly in order. The first failure stops
// binding and is returned.
func (b *Binder) Bind(params []Param) ([]reflect.Value, error) {
	vals := make([]reflect.Value, 0, len(params))
	for _, p := range params {
		v, err := b.BindParam(p)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// BindParam binds a single parameter.
func (b *Binder) BindParam(p Param) (reflect.Value, error) {
	if p.Type == nil {
		return reflect.Value{}, UnknownTypeError{Param: p.Name}
	}
	if len(p.From) > 1 {
		return reflect.Value{}, AmbiguousParameterBindingError{Param: p.Name, Sources: p.From}
	}
	if len(p.From) == 0 {
		return reflect.Zero(p.Type), nil
	}

	src := p.From[0]
	switch src.Kind {
	case KindBody:
		return b.bindBody(p, src)
	case KindHeader:
		return b.bindHeader(p, src)
	case KindRoute:
		return b.bindRoute(p, src)
	case KindQuery:
		return b.bindQuery(p, src)
	default:
		return reflect.Zero(p.Type), nil
	}
}

func (b *Binder) bindBody(p Param, src Source) (reflect.Value, error) {
	body, err := b.readBody()
	if err != nil {
		return reflect.Value{}, DecodeError{Param: p.Name, Source: src, Cause: err}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if p.Optional {
			return reflect.Zero(p.Type), nil
		}
		return reflect.Value{}, MissingBodyContentError{Param: p.Name}
	}

	ptr := reflect.New(p.Type)
	err = json.Unmarshal(body, ptr.Interface())
	if err != nil {
		return reflect.Value{}, DecodeError{Param: p.Name, Source: src, Cause: err}
	}
	return ptr.Elem(), nil
}

func (b *Binder) readBody() ([]byte, error) {
	if b.bodyRead {
		return b.body, b.bodyErr
	}
	b.bodyRead = true

	if b.r.Body == nil || b.r.Body == http.NoBody {
		return nil, nil
	}

	var r io.Reader = b.r.Body
	r, b.bodyErr = transcode(r, b.r.Header.Get("Content-Type"))
	if b.bodyErr != nil {
		return nil, b.bodyErr
	}
	b.body, b.bodyErr = io.ReadAll(r)
	return b.body, b.bodyErr
}

func transcode(r io.Reader, contentType string) (io.Reader, error) {
	if contentType == "" {
		return r, nil
	}

	// An unparseable media type declares no charset.
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return r, nil
	}

	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return r, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, UnsupportedCharsetError{Charset: charset}
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

func (b *Binder) bindHeader(p Param, src Source) (reflect.Value, error) {
	values := b.r.Header.Values(src.Key)
	if len(values) == 0 {
		if p.Optional {
			return reflect.Zero(p.Type), nil
		}
		return reflect.Value{}, MissingHeaderValueError{Param: p.Name, Key: src.Key}
	}
	return decodeText(p, src, values[0])
}

func (b *Binder) bindRoute(p Param, src Source) (reflect.Value, error) {
	escaped := strings.TrimRight(b.r.URL.EscapedPath(), "/")
	segment, err := url.PathUnescape(path.Base(escaped))
	if err != nil {
		return reflect.Value{}, DecodeError{Param: p.Name, Source: src, Cause: err}
	}
	if segment == "/" || segment == "." {
		segment = ""
	}
	return decodeText(p, src, segment)
}

// decodeText parses s the way a JSON document would be parsed and falls back
// to the raw text for string like targets, so a bare header value such as
// Bearer abc binds to a string without quoting.
func decodeText(p Param, src Source, s string) (reflect.Value, error) {
	ptr := reflect.New(p.Type)

	jsonErr := json.Unmarshal([]byte(s), ptr.Interface())
	if jsonErr == nil {
		return ptr.Elem(), nil
	}

	if tu, ok := ptr.Interface().(encoding.TextUnmarshaler); ok {
		err := tu.UnmarshalText([]byte(s))
		if err != nil {
			return reflect.Value{}, DecodeError{Param: p.Name, Source: src, Cause: err}
		}
		return ptr.Elem(), nil
	}
	if p.Type.Kind() == reflect.String {
		ptr.Elem().SetString(s)
		return ptr.Elem(), nil
	}
	return reflect.Value{}, DecodeError{Param: p.Name, Source: src, Cause: jsonErr}
}

func (b *Binder) bindQuery(p Param, src Source) (reflect.Value, error) {
	query := b.r.URL.Query()

	var input any
	switch p.Type.Kind() {
	case reflect.Struct, reflect.Map:
		input = flatten(query)
	case reflect.Pointer:
		if p.Type.Elem().Kind() != reflect.Struct {
			return reflect.Value{}, DecodeError{Param: p.Name, Source: src, Cause: ErrUnsupportedQueryTarget}
		}
		input = flatten(query)
	default:
		if !query.Has(p.Name) {
			if p.Optional {
				return reflect.Zero(p.Type), nil
			}
			return reflect.Value{}, MissingQueryValueError{Param: p.Name}
		}
		values := query[p.Name]
		if len(values) == 1 || p.Type.Kind() != reflect.Slice {
			input = values[0]
		} else {
			input = values
		}
	}

	ptr := reflect.New(p.Type)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           ptr.Interface(),
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return reflect.Value{}, DecodeError{Param: p.Name, Source: src, Cause: err}
	}

	err = dec.Decode(input)
	if err != nil {
		return reflect.Value{}, DecodeError{Param: p.Name, Source: src, Cause: err}
	}
	return ptr.Elem(), nil
}

// flatten turns url.Values into a structured object. Keys with a single
// value map to that value, repeated keys map to every value.
func flatten(query url.Values) map[string]any {
	m := make(map[string]any, len(query))
	for k, vs := range query {
		if len(vs) == 1 {
			m[k] = vs[0]
			continue
		}
		m[k] = vs
	}
	return m
}
