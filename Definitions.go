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

// Package aec defines the top level constants and observability types
// used in the aec-go adaptive entropy coder, an implementation of the
// CCSDS 121.0-B-2 lossless data compression recommendation.
//
// The codec itself lives in the sub-packages: bitstream contains the
// coded data set bit writer and reader, entropy contains the adaptive
// encoder and decoder, and io contains a Writer and a Reader wrapping
// the codec in a self-describing stream format.
package aec

const (
	// DATA_SIGNED samples are two's complement signed integers
	DATA_SIGNED = 1

	// DATA_3BYTE 17..24 bit samples are packed into 3 bytes
	DATA_3BYTE = 2

	// DATA_MSB samples are stored most significant byte first
	DATA_MSB = 4

	// DATA_PREPROCESS map samples to residuals with the unit delay
	// predictor before coding
	DATA_PREPROCESS = 8

	// RESTRICTED use the restricted set of code options (samples of
	// at most 4 bits only)
	RESTRICTED = 16

	// PAD_RSI pad the coded stream to a byte boundary at the end of
	// each reference sample interval
	PAD_RSI = 32
)

const (
	// NO_FLUSH more input data may follow
	NO_FLUSH = 0

	// FLUSH no more input, pad and deliver the last byte
	FLUSH = 1
)

const (
	ERR_CONF   = 1 // invalid configuration
	ERR_MEM    = 2 // memory allocation failure (never returned by this implementation)
	ERR_STREAM = 3 // requested flush did not complete
	ERR_DATA   = 4 // corrupt or truncated coded stream
	ERR_IO     = 5 // underlying reader/writer failure
)

const (
	// MAX_BITS_PER_SAMPLE largest supported sample width
	MAX_BITS_PER_SAMPLE = 32

	// MAX_RSI largest supported reference sample interval, in blocks
	MAX_RSI = 4096

	// MIN_BLOCK_SIZE and MAX_BLOCK_SIZE bound the per block sample
	// count; valid sizes are 8, 16, 32 and 64
	MIN_BLOCK_SIZE = 8
	MAX_BLOCK_SIZE = 64
)
