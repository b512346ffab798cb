// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import "github.com/z5labs/tigernet/config/key"

// Map is an ordinary map[string]any but implements the Source interface.
// Nested maps become nested keys.
type Map map[string]any

// Apply implements the Source interface. It recursively walks the underlying
// map to find key value pairs to set on the given store.
func (m Map) Apply(store Store) error {
	return walkMap(m, store, nil)
}

func walkMap(m map[string]any, store Store, chain key.Chain) error {
	for k, v := range m {
		next := append(chain[:len(chain):len(chain)], key.Name(k))

		var err error
		switch x := v.(type) {
		case map[string]any:
			err = walkMap(x, store, next)
		case Map:
			err = walkMap(x, store, next)
		default:
			err = store.Set(next, x)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
