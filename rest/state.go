// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

// State is a step of the per-request dispatcher state machine.
//
// Requests move from [StateAccepted] through to [StateClosed] in order.
// [StateErrorResponse] can be reached from any state and always leads to
// [StateClosed].
type State int

const (
	StateAccepted State = iota
	StateMiddlewareRunning
	StateRouteMatching
	StateServiceResolving
	StateParameterBinding
	StateInvoking
	StateResponseWriting
	StateErrorResponse
	StateClosed
)

// String implements the [fmt.Stringer] interface.
func (s State) String() string {
	switch s {
	case StateAccepted:
		return "accepted"
	case StateMiddlewareRunning:
		return "middleware_running"
	case StateRouteMatching:
		return "route_matching"
	case StateServiceResolving:
		return "service_resolving"
	case StateParameterBinding:
		return "parameter_binding"
	case StateInvoking:
		return "invoking"
	case StateResponseWriting:
		return "response_writing"
	case StateErrorResponse:
		return "error_response"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
