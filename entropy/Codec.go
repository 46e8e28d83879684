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

// Package entropy implements the CCSDS 121.0-B-2 adaptive entropy
// coder. AdaptiveEncoder compresses a stream of fixed width integer
// samples by partitioning it into small blocks and coding each block
// with the cheapest of four options: sample splitting with an adaptive
// splitting position, second extension, uncompressed passthrough and
// zero block run length. AdaptiveDecoder is its exact inverse.
package entropy

import (
	"fmt"

	aec "github.com/telemetric/aec-go"
)

const (
	_M_CONTINUE = 0
	_M_EXIT     = 1

	// _ROS marks a zero block run that fills a whole 64 block segment
	_ROS = 64

	// _CDS_LEN is the worst case byte length of a single coded data
	// set (5 bit option ID, 32 bit reference sample, 64 samples of 32
	// bits) plus slack for the 8 byte accumulator stores
	_CDS_LEN = (5+32+64*32+7)/8 + 16
)

// Stream is the caller visible session state shared by the encoder and
// the decoder. NextIn and NextOut are consumed from the front; the
// available byte counts are their lengths. TotalIn and TotalOut
// accumulate the bytes consumed and produced across calls.
type Stream struct {
	NextIn  []byte
	NextOut []byte

	TotalIn  uint64
	TotalOut uint64

	// BitsPerSample is the sample width in [1..32]
	BitsPerSample uint

	// BlockSize is the number of samples per block: 8, 16, 32 or 64
	BlockSize uint

	// RSI is the reference sample interval, in blocks, in [1..4096]
	RSI uint

	// Flags is a bitset of the aec.DATA_* / aec.RESTRICTED /
	// aec.PAD_RSI options
	Flags int
}

// Error is an entropy codec error carrying one of the aec error codes
type Error struct {
	msg  string
	code int
}

// Error returns the underlying error
func (this Error) Error() string {
	return fmt.Sprintf("%v (code %v)", this.msg, this.code)
}

// Message returns the message string associated with the error
func (this Error) Message() string {
	return this.msg
}

// ErrorCode returns the code value associated with the error
func (this Error) ErrorCode() int {
	return this.code
}

// config is the derived, immutable session configuration
type config struct {
	bitsPerSample  uint
	blockSize      int
	rsi            int
	flags          int
	idLen          uint
	bytesPerSample int
	kmax           int
	xmin           int64
	xmax           int64
	rsiLen         int
	sampleMask     uint32
	signed         bool
	preprocess     bool
	msb            bool
	padRSI         bool
}

// newConfig validates the stream parameters and derives the session
// configuration: ID field width, sample byte layout and sample bounds.
func newConfig(strm *Stream) (*config, error) {
	if strm == nil {
		return nil, &Error{msg: "Invalid null stream parameter", code: aec.ERR_CONF}
	}

	if strm.BitsPerSample == 0 || strm.BitsPerSample > aec.MAX_BITS_PER_SAMPLE {
		return nil, &Error{msg: fmt.Sprintf("Invalid bits per sample %d (must be in [1..32])",
			strm.BitsPerSample), code: aec.ERR_CONF}
	}

	if strm.BlockSize != 8 && strm.BlockSize != 16 && strm.BlockSize != 32 && strm.BlockSize != 64 {
		return nil, &Error{msg: fmt.Sprintf("Invalid block size %d (must be 8, 16, 32 or 64)",
			strm.BlockSize), code: aec.ERR_CONF}
	}

	if strm.RSI == 0 || strm.RSI > aec.MAX_RSI {
		return nil, &Error{msg: fmt.Sprintf("Invalid reference sample interval %d (must be in [1..4096])",
			strm.RSI), code: aec.ERR_CONF}
	}

	this := &config{}
	this.bitsPerSample = strm.BitsPerSample
	this.blockSize = int(strm.BlockSize)
	this.rsi = int(strm.RSI)
	this.flags = strm.Flags
	this.signed = strm.Flags&aec.DATA_SIGNED != 0
	this.preprocess = strm.Flags&aec.DATA_PREPROCESS != 0
	this.msb = strm.Flags&aec.DATA_MSB != 0
	this.padRSI = strm.Flags&aec.PAD_RSI != 0

	if strm.BitsPerSample > 16 {
		this.idLen = 5

		if strm.BitsPerSample <= 24 && strm.Flags&aec.DATA_3BYTE != 0 {
			this.bytesPerSample = 3
		} else {
			this.bytesPerSample = 4
		}
	} else if strm.BitsPerSample > 8 {
		this.idLen = 4
		this.bytesPerSample = 2
	} else {
		if strm.Flags&aec.RESTRICTED != 0 {
			if strm.BitsPerSample > 4 {
				return nil, &Error{msg: "The restricted option set requires at most 4 bits per sample",
					code: aec.ERR_CONF}
			}

			if strm.BitsPerSample <= 2 {
				this.idLen = 1
			} else {
				this.idLen = 2
			}
		} else {
			this.idLen = 3
		}

		this.bytesPerSample = 1
	}

	if this.signed {
		this.xmin = -(int64(1) << (strm.BitsPerSample - 1))
		this.xmax = (int64(1) << (strm.BitsPerSample - 1)) - 1
	} else {
		this.xmin = 0
		this.xmax = (int64(1) << strm.BitsPerSample) - 1
	}

	this.kmax = (1 << this.idLen) - 3
	this.rsiLen = this.rsi * this.blockSize * this.bytesPerSample
	this.sampleMask = uint32((uint64(1) << strm.BitsPerSample) - 1)
	return this, nil
}
