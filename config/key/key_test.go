// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChain_Key(t *testing.T) {
	testCases := []struct {
		Name     string
		Chain    Chain
		Expected string
	}{
		{Name: "empty", Chain: Chain{}, Expected: ""},
		{Name: "single", Chain: Chain{Name("http")}, Expected: "http"},
		{Name: "nested", Chain: Chain{Name("http"), Name("addr")}, Expected: "http.addr"},
		{Name: "chain of chains", Chain: Chain{Name("a"), Chain{Name("b"), Name("c")}}, Expected: "a.b.c"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			assert.Equal(t, testCase.Expected, testCase.Chain.Key())
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("will drop empty segments", func(t *testing.T) {
		t.Run("if the key has leading, trailing or repeated dots", func(t *testing.T) {
			chain := Parse(".http..addr.")
			if !assert.Equal(t, Chain{Name("http"), Name("addr")}, chain) {
				return
			}
		})
	})
}
