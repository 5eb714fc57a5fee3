/*
 * MIT License
 *
 * Copyright (c) 2024-2026 HiveGrid Team
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package syncmap

import "sync"

// SyncMap is a generic map guarded by a read-write mutex.
type SyncMap[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// New creates an empty SyncMap.
func New[K comparable, V any]() *SyncMap[K, V] {
	return &SyncMap[K, V]{data: make(map[K]V)}
}

// Set stores a key-value pair, overwriting any previous value.
func (s *SyncMap[K, V]) Set(k K, v V) {
	s.mu.Lock()
	s.data[k] = v
	s.mu.Unlock()
}

// Get returns the value bound to the key and whether it was found.
func (s *SyncMap[K, V]) Get(k K) (V, bool) {
	s.mu.RLock()
	value, ok := s.data[k]
	s.mu.RUnlock()
	return value, ok
}

// Take removes and returns the value bound to the key.
func (s *SyncMap[K, V]) Take(k K) (V, bool) {
	s.mu.Lock()
	value, ok := s.data[k]
	if ok {
		delete(s.data, k)
	}
	s.mu.Unlock()
	return value, ok
}

// Delete removes the key-value pair bound to the key, if any.
func (s *SyncMap[K, V]) Delete(k K) {
	s.mu.Lock()
	delete(s.data, k)
	s.mu.Unlock()
}

// Len returns the number of stored pairs.
func (s *SyncMap[K, V]) Len() int {
	s.mu.RLock()
	length := len(s.data)
	s.mu.RUnlock()
	return length
}

// Range calls f for every stored pair. The iteration order is not
// defined. f must not mutate the map.
func (s *SyncMap[K, V]) Range(f func(K, V)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, value := range s.data {
		f(key, value)
	}
}
