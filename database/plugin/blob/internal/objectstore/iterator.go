// Copyright 2026 Blink Labs Software
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

package objectstore

import (
	"bytes"
	"slices"

	"github.com/blinklabs-io/leapfrog/database/types"
)

// NewIterator lists the bucket once and merges the transaction's pending
// writes into the listing. Values are fetched lazily by ValueCopy.
func (s *Store) NewIterator(
	t types.Txn,
	opts types.BlobIteratorOptions,
) types.BlobIterator {
	ot, err := s.validateTxn(t)
	if err != nil {
		return &iterator{err: err}
	}
	ctx, cancel := s.opContext()
	defer cancel()
	s.metrics.op("list", 0)
	names, err := s.backend.List(ctx, EncodeKey(opts.Prefix))
	if err != nil {
		s.logger.Error(
			"object store list failed",
			"component", "database",
			"error", err,
		)
		return &iterator{err: err}
	}
	keys := make(map[string]struct{}, len(names))
	for _, name := range names {
		key, err := DecodeKey(name)
		if err != nil {
			// Not one of ours
			continue
		}
		keys[string(key)] = struct{}{}
	}
	for key, val := range ot.writes {
		if !bytes.HasPrefix([]byte(key), opts.Prefix) {
			continue
		}
		if val == nil {
			delete(keys, key)
		} else {
			keys[key] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(keys))
	for key := range keys {
		sorted = append(sorted, key)
	}
	slices.Sort(sorted)
	if opts.Reverse {
		slices.Reverse(sorted)
	}
	return &iterator{store: s, txn: t, keys: sorted, reverse: opts.Reverse}
}

type iterator struct {
	store   *Store
	txn     types.Txn
	err     error
	keys    []string
	idx     int
	reverse bool
}

func (it *iterator) Rewind() {
	it.idx = 0
}

func (it *iterator) Seek(prefix []byte) {
	target := string(prefix)
	it.idx = len(it.keys)
	for i, key := range it.keys {
		if (it.reverse && key <= target) || (!it.reverse && key >= target) {
			it.idx = i
			return
		}
	}
}

func (it *iterator) Valid() bool {
	return it.err == nil && it.idx < len(it.keys)
}

func (it *iterator) ValidForPrefix(prefix []byte) bool {
	return it.Valid() && bytes.HasPrefix([]byte(it.keys[it.idx]), prefix)
}

func (it *iterator) Next() {
	if it.idx < len(it.keys) {
		it.idx++
	}
}

func (it *iterator) Item() types.BlobItem {
	if !it.Valid() {
		return nil
	}
	return &item{store: it.store, txn: it.txn, key: []byte(it.keys[it.idx])}
}

func (it *iterator) Close() {}

func (it *iterator) Err() error {
	return it.err
}

type item struct {
	store *Store
	txn   types.Txn
	key   []byte
}

func (i *item) Key() []byte {
	return slices.Clone(i.key)
}

func (i *item) ValueCopy(dst []byte) ([]byte, error) {
	data, err := i.store.Get(i.txn, i.key)
	if err != nil {
		return nil, err
	}
	return append(dst[:0], data...), nil
}
