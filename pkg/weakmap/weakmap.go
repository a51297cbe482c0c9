// Copyright 2018 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package weakmap provides an ordered key -> weakly-held value map.
//
// A WeakMap never lets a lookup observe a value whose last strong
// reference has gone away: insert stores a weak.Pointer, and every
// lookup upgrades it on the spot. This is the Go analogue of a
// BTreeMap<K, Weak<V>>, used throughout pkg/sentry/kernel to hold the
// child-ward edges of the process/session/group graph without
// preventing those objects from being collected once nothing else
// references them.
package weakmap

import (
	"cmp"
	"sync"
	"weak"

	"github.com/google/btree"
)

// opsThreshold is the number of mutating/lookup operations after which
// the map is swept to drop expired entries. Amortizes the cost of
// bounding the expired-entry backlog to O(1) per operation.
const opsThreshold = 1000

// btreeDegree is the branching factor used for the backing B-tree. 32
// is google/btree's own recommended default for in-memory use.
const btreeDegree = 32

type entry[K cmp.Ordered, V any] struct {
	key K
	ref weak.Pointer[V]
}

// WeakMap is a key-ordered map from K to a weakly-held *V.
//
// The zero value is not usable; construct with New.
type WeakMap[K cmp.Ordered, V any] struct {
	mu   sync.Mutex
	tree *btree.BTreeG[entry[K, V]]
	ops  uint64
}

// New returns an empty WeakMap.
func New[K cmp.Ordered, V any]() *WeakMap[K, V] {
	return &WeakMap[K, V]{
		tree: btree.NewG(btreeDegree, func(a, b entry[K, V]) bool {
			return a.key < b.key
		}),
	}
}

// bumpLocked increments the op counter and sweeps if the threshold is
// reached. Callers must hold m.mu.
func (m *WeakMap[K, V]) bumpLocked() {
	m.ops++
	if m.ops >= opsThreshold {
		m.sweepLocked()
	}
}

// sweepLocked removes all expired entries. Callers must hold m.mu.
func (m *WeakMap[K, V]) sweepLocked() {
	m.ops = 0
	var dead []entry[K, V]
	m.tree.Ascend(func(e entry[K, V]) bool {
		if e.ref.Value() == nil {
			dead = append(dead, e)
		}
		return true
	})
	for _, e := range dead {
		m.tree.Delete(e)
	}
}

// Insert stores a fresh weak downgrade of value under key, returning the
// previously stored value if it was still live.
func (m *WeakMap[K, V]) Insert(key K, value *V) *V {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bumpLocked()
	old, had := m.tree.ReplaceOrInsert(entry[K, V]{key: key, ref: weak.Make(value)})
	if !had {
		return nil
	}
	return old.ref.Value()
}

// Get returns a fresh strong upgrade of the value stored at key, or nil
// if the key is absent or its value has expired.
func (m *WeakMap[K, V]) Get(key K) *V {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bumpLocked()
	e, ok := m.tree.Get(entry[K, V]{key: key})
	if !ok {
		return nil
	}
	return e.ref.Value()
}

// Contains reports whether key is present and live.
func (m *WeakMap[K, V]) Contains(key K) bool {
	return m.Get(key) != nil
}

// Remove removes key, returning its last live upgrade if any.
func (m *WeakMap[K, V]) Remove(key K) *V {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bumpLocked()
	old, had := m.tree.Delete(entry[K, V]{key: key})
	if !had {
		return nil
	}
	return old.ref.Value()
}

// RemoveEntry is like Remove, but also returns the stored key.
func (m *WeakMap[K, V]) RemoveEntry(key K) (K, *V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bumpLocked()
	old, had := m.tree.Delete(entry[K, V]{key: key})
	if !had {
		var zero K
		return zero, nil, false
	}
	if v := old.ref.Value(); v != nil {
		return old.key, v, true
	}
	return old.key, nil, false
}

// Len returns the number of live elements in the map. This is a linear
// operation: it walks every entry to upgrade and count it.
func (m *WeakMap[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	n := 0
	m.tree.Ascend(func(e entry[K, V]) bool {
		if e.ref.Value() != nil {
			n++
		}
		return true
	})
	return n
}

// IsEmpty reports whether the map contains no live elements.
func (m *WeakMap[K, V]) IsEmpty() bool {
	return m.Len() == 0
}

// RawLen exposes the underlying entry count, including expired entries
// not yet swept. Intended for tests that want to observe sweep behavior.
func (m *WeakMap[K, V]) RawLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree.Len()
}

// kv is a materialized, already-upgraded entry used to snapshot the map
// before yielding to a caller-supplied function (so the caller can
// safely re-enter the map from within the callback).
type kv[K cmp.Ordered, V any] struct {
	key   K
	value *V
}

func (m *WeakMap[K, V]) snapshot() []kv[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	var out []kv[K, V]
	m.tree.Ascend(func(e entry[K, V]) bool {
		if v := e.ref.Value(); v != nil {
			out = append(out, kv[K, V]{e.key, v})
		}
		return true
	})
	return out
}

// All returns an iterator over the live entries of the map, in key
// order. The iterator is a point-in-time snapshot: values inserted or
// removed during iteration are not observed.
func (m *WeakMap[K, V]) All() func(yield func(K, *V) bool) {
	return func(yield func(K, *V) bool) {
		for _, e := range m.snapshot() {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Keys returns the live keys of the map, in order.
func (m *WeakMap[K, V]) Keys() []K {
	entries := m.snapshot()
	keys := make([]K, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}

// Values returns the live values of the map, in key order.
func (m *WeakMap[K, V]) Values() []*V {
	entries := m.snapshot()
	values := make([]*V, len(entries))
	for i, e := range entries {
		values[i] = e.value
	}
	return values
}

// Equal reports whether every live key in m maps to a pointer-identical
// value in other. This mirrors the upstream WeakMap's equality contract,
// which is checked in one direction only (callers needing a symmetric
// check should also call other.Equal(m)).
func (m *WeakMap[K, V]) Equal(other *WeakMap[K, V]) bool {
	for _, e := range m.snapshot() {
		if other.Get(e.key) != e.value {
			return false
		}
	}
	return true
}
