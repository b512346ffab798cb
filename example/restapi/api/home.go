// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package api contains the resters exposed by the sample API.
package api

import (
	"github.com/z5labs/tigernet/rest/rester"
)

// HomeRester serves /home.
type HomeRester struct{}

// Actions implements the [rester.ApiRester] interface.
func (*HomeRester) Actions() []rester.Action {
	return []rester.Action{
		rester.On("Index", rester.Getter()),
	}
}

// Greeting is the body returned by [HomeRester.Index].
type Greeting struct {
	Message string `json:"message"`
}

// Index greets the caller.
func (*HomeRester) Index() Greeting {
	return Greeting{Message: "Hello World!"}
}
