// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/z5labs/tigernet/di"
	"github.com/z5labs/tigernet/internal/try"
	"github.com/z5labs/tigernet/pkg/slogfield"
	"github.com/z5labs/tigernet/rest/bind"
	"github.com/z5labs/tigernet/rest/rester"
	"github.com/z5labs/tigernet/rest/route"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// handler is either a discovered action or an explicitly registered
// [http.Handler].
type handler struct {
	action   *rester.Descriptor
	explicit http.Handler
}

type dispatcher struct {
	routes     *route.Table[handler]
	registry   *di.Registry
	middleware []Middleware

	log     *slog.Logger
	tracer  trace.Tracer
	metrics *metrics

	serialize bool
	mu        sync.Mutex
}

// ServeHTTP implements the [http.Handler] interface.
func (d *dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if d.serialize {
		d.mu.Lock()
		defer d.mu.Unlock()
	}

	start := time.Now()
	ctx, span := d.tracer.Start(r.Context(), "dispatch", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	rc := newRequestContext(w, r.WithContext(ctx))
	rc.onTransition = func(s State) {
		span.AddEvent("state", trace.WithAttributes(attribute.String("state", s.String())))
	}

	err := d.dispatch(rc)
	last := rc.State()
	if err != nil {
		d.writeError(rc, err)
	}
	rc.close()

	label := "unmatched"
	if d.routes.Contains(rc.Path()) {
		label = rc.Path()
	}
	status := rc.Status()
	method := requestMethod(r.Method)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("http.route", label),
		attribute.Int("http.response.status_code", status),
	)
	d.metrics.observe(label, method, status, elapsed)

	attrs := []slog.Attr{
		slogfield.Route(label),
		slogfield.Method(method),
		slogfield.Status(status),
		slogfield.String("state", last.String()),
		slogfield.Latency(elapsed),
	}
	if err == nil {
		d.log.LogAttrs(ctx, slog.LevelInfo, "handled request", attrs...)
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	d.log.LogAttrs(ctx, level, "failed to handle request", append(attrs, slogfield.Error(err))...)
}

// requestMethod bounds the method values used in metric labels and logs.
// Any method token outside the standard set is reported as "other".
func requestMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodHead, http.MethodOptions:
		return method
	default:
		return "other"
	}
}

func (d *dispatcher) dispatch(rc *RequestContext) (err error) {
	defer try.Recover(&err)

	rc.transition(StateMiddlewareRunning)
	for _, mw := range d.middleware {
		if !d.routes.Contains(rc.Path()) {
			return RouteNotFoundError{Path: rc.Path()}
		}

		err := mw.Intercept(rc)
		if err != nil {
			return err
		}
		if rc.Written() {
			return nil
		}
	}

	rc.transition(StateRouteMatching)
	rt, ok := d.routes.Lookup(rc.Path())
	if !ok {
		return RouteNotFoundError{Path: rc.Path()}
	}
	if !rt.Method.Matches(rc.Method()) {
		return VerbMismatchError{
			Path:    rt.Path,
			Method:  rc.Method(),
			Allowed: string(rt.Method),
		}
	}

	if rt.Handler.explicit != nil {
		return d.serveExplicit(rc, rt.Handler.explicit)
	}
	return d.invoke(rc, rt.Handler.action)
}

func (d *dispatcher) serveExplicit(rc *RequestContext, h http.Handler) (err error) {
	rc.transition(StateInvoking)
	defer func() {
		if err != nil {
			err = InvocationError{Action: rc.Path(), Cause: err}
		}
	}()
	defer try.Recover(&err)

	h.ServeHTTP(rc.ResponseWriter(), rc.Request())
	return nil
}

func (d *dispatcher) invoke(rc *RequestContext, action *rester.Descriptor) error {
	rc.transition(StateServiceResolving)
	recv, err := d.registry.Resolve(action.Owner)
	if err != nil {
		return ResolutionError{Action: action.Name(), Cause: err}
	}

	rc.transition(StateParameterBinding)
	args, err := bind.NewBinder(rc.Request()).Bind(action.Params)
	if err != nil {
		return BindingError{Action: action.Name(), Cause: err}
	}

	rc.transition(StateInvoking)
	res, err := action.Invoke(rc.Context(), recv, args)
	if err != nil {
		return InvocationError{Action: action.Name(), Cause: err}
	}

	rc.transition(StateResponseWriting)
	if !res.HasValue {
		rc.ResponseWriter().Header().Set("Content-Length", "0")
		return nil
	}

	b, err := json.Marshal(res.Value)
	if err != nil {
		return ResponseEncodeError{Action: action.Name(), Cause: err}
	}
	return writeJSON(rc.ResponseWriter(), 0, b)
}

func (d *dispatcher) writeError(rc *RequestContext, err error) {
	rc.transition(StateErrorResponse)
	if rc.Written() {
		return
	}

	status, msg := statusOf(err)
	b, merr := json.Marshal(errorBody{Error: msg})
	if merr != nil {
		rc.ResponseWriter().WriteHeader(status)
		return
	}
	werr := writeJSON(rc.ResponseWriter(), status, b)
	if werr != nil {
		d.log.ErrorContext(rc.Context(), "failed to write error response", slogfield.Error(werr))
	}
}

// writeJSON writes the payload fully. A zero status leaves the status code
// to the platform default.
func writeJSON(w http.ResponseWriter, status int, b []byte) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	if status != 0 {
		w.WriteHeader(status)
	}
	_, err := w.Write(b)
	return err
}
