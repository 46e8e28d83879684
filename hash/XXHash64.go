/*
Copyright 2012-2026 the aec-go authors
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package hash provides the content checksum used by the stream
// container.
package hash

import (
	"encoding/binary"
	"math/bits"
)

// XXHash64 is an extremely fast non cryptographic hash designed by
// Yann Collet (https://github.com/Cyan4973/xxHash).

const (
	_XXH64_PRIME1 = uint64(0x9E3779B185EBCA87)
	_XXH64_PRIME2 = uint64(0xC2B2AE3D27D4EB4F)
	_XXH64_PRIME3 = uint64(0x165667B19E3779F9)
	_XXH64_PRIME4 = uint64(0x85EBCA77C2B2AE63)
	_XXH64_PRIME5 = uint64(0x27D4EB2F165667C5)
)

// XXHash64 is a seeded xxHash64 hasher
type XXHash64 struct {
	seed uint64
}

// NewXXHash64 creates a new instance of XXHash64
func NewXXHash64(seed uint64) (*XXHash64, error) {
	this := &XXHash64{seed: seed}
	return this, nil
}

// SetSeed sets the hash seed
func (this *XXHash64) SetSeed(seed uint64) {
	this.seed = seed
}

// Hash returns the 64 bit hash of data
func (this *XXHash64) Hash(data []byte) uint64 {
	n := len(data)
	var h uint64

	if n >= 32 {
		v1 := this.seed + _XXH64_PRIME1 + _XXH64_PRIME2
		v2 := this.seed + _XXH64_PRIME2
		v3 := this.seed
		v4 := this.seed - _XXH64_PRIME1

		for len(data) >= 32 {
			v1 = xxh64Round(v1, binary.LittleEndian.Uint64(data[0:8]))
			v2 = xxh64Round(v2, binary.LittleEndian.Uint64(data[8:16]))
			v3 = xxh64Round(v3, binary.LittleEndian.Uint64(data[16:24]))
			v4 = xxh64Round(v4, binary.LittleEndian.Uint64(data[24:32]))
			data = data[32:]
		}

		h = bits.RotateLeft64(v1, 1) + bits.RotateLeft64(v2, 7) +
			bits.RotateLeft64(v3, 12) + bits.RotateLeft64(v4, 18)

		h = xxh64MergeRound(h, v1)
		h = xxh64MergeRound(h, v2)
		h = xxh64MergeRound(h, v3)
		h = xxh64MergeRound(h, v4)
	} else {
		h = this.seed + _XXH64_PRIME5
	}

	h += uint64(n)

	for len(data) >= 8 {
		h ^= xxh64Round(0, binary.LittleEndian.Uint64(data[0:8]))
		h = bits.RotateLeft64(h, 27)*_XXH64_PRIME1 + _XXH64_PRIME4
		data = data[8:]
	}

	if len(data) >= 4 {
		h ^= uint64(binary.LittleEndian.Uint32(data[0:4])) * _XXH64_PRIME1
		h = bits.RotateLeft64(h, 23)*_XXH64_PRIME2 + _XXH64_PRIME3
		data = data[4:]
	}

	for i := range data {
		h ^= uint64(data[i]) * _XXH64_PRIME5
		h = bits.RotateLeft64(h, 11) * _XXH64_PRIME1
	}

	h ^= h >> 33
	h *= _XXH64_PRIME2
	h ^= h >> 29
	h *= _XXH64_PRIME3
	return h ^ (h >> 32)
}

func xxh64Round(acc, val uint64) uint64 {
	acc += val * _XXH64_PRIME2
	return bits.RotateLeft64(acc, 31) * _XXH64_PRIME1
}

func xxh64MergeRound(acc, val uint64) uint64 {
	acc ^= xxh64Round(0, val)
	return acc*_XXH64_PRIME1 + _XXH64_PRIME4
}
