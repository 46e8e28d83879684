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

package entropy

import (
	"math"
)

// blockFS sums the fundamental sequence lengths of the current block
// for splitting position k, skipping the reference sample
func (this *AdaptiveEncoder) blockFS(k int) uint64 {
	fs := uint64(0)

	for _, d := range this.block {
		fs += uint64(d >> uint(k))
	}

	if this.ref != 0 {
		fs -= uint64(this.block[0] >> uint(k))
	}

	return fs
}

// assessSplittingOption returns the coded length of the current block
// under the splitting option with the best k, and records that k.
//
// In the splitting option every sample of a block is split at the same
// position into k low bits kept binary and the remaining high bits
// coded as a fundamental sequence. The length as a function of k has
// exactly one minimum (A. Kiely, IPN Progress Report 42-159), so the
// search starts from the previous block's winner and walks uphill at
// most once: while k grows, a fundamental sequence part already
// shorter than the block size cannot pay for the extra binary bit per
// sample, and the mirror argument holds while k shrinks.
func (this *AdaptiveEncoder) assessSplittingOption() uint32 {
	thisBS := this.cfg.blockSize - this.ref
	lenMin := uint64(math.MaxUint64)
	k := this.k
	kMin := k
	noTurn := k == 0
	dir := true

	for {
		fsLen := this.blockFS(k)
		length := fsLen + uint64(thisBS)*uint64(k+1)

		if length < lenMin {
			if lenMin != math.MaxUint64 {
				noTurn = true
			}

			lenMin = length
			kMin = k

			if dir {
				if fsLen < uint64(thisBS) || k >= this.cfg.kmax {
					if noTurn {
						break
					}

					k = this.k - 1
					dir = false
					noTurn = true
				} else {
					k++
				}
			} else {
				if fsLen >= uint64(thisBS) || k == 0 {
					break
				}

				k--
			}
		} else {
			if noTurn {
				break
			}

			k = this.k - 1
			dir = false
			noTurn = true
		}
	}

	this.k = kMin
	return uint32(lenMin)
}

// assessSEOption returns the coded length of the current block under
// the second extension option, or MaxUint32 when a pair sum overflows
// the uncompressed length and the option is not viable
func (this *AdaptiveEncoder) assessSEOption() uint32 {
	length := uint32(1)

	for i := 0; i < this.cfg.blockSize; i += 2 {
		d := uint64(this.block[i]) + uint64(this.block[i+1])

		if d > uint64(this.uncompLen) {
			return math.MaxUint32
		}

		length += uint32(d*(d+1)/2) + this.block[i+1] + 1
	}

	return length
}

// selectCodeOption compares the three assessed lengths against the
// uncompressed length and dispatches to the winning emitter
func (this *AdaptiveEncoder) selectCodeOption() int {
	splitLen := uint32(math.MaxUint32)

	if this.cfg.idLen > 1 {
		splitLen = this.assessSplittingOption()
	}

	seLen := this.assessSEOption()

	if splitLen < this.uncompLen {
		if splitLen < seLen {
			this.mode = mEncodeSplitting
		} else {
			this.mode = mEncodeSE
		}
	} else {
		if this.uncompLen <= seLen {
			this.mode = mEncodeUncomp
		} else {
			this.mode = mEncodeSE
		}
	}

	return _M_CONTINUE
}
