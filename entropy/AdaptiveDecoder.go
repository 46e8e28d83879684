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
	"fmt"

	aec "github.com/telemetric/aec-go"
	"github.com/telemetric/aec-go/bitstream"
)

// AdaptiveDecoder is the inverse of AdaptiveEncoder. It parses coded
// data sets out of a complete coded stream and reconstructs the
// original samples.
//
// A CCSDS 121 stream is not self terminating: the trailing byte is
// padded with zero bits that must not be parsed as another coded data
// set. The decoder therefore works on whole buffers; NextIn holds the
// complete coded stream and the length of NextOut states exactly how
// many sample bytes are expected.
type AdaptiveDecoder struct {
	strm   *Stream
	cfg    *config
	writer sampleWriter
	data   []uint32
}

// NewAdaptiveDecoder creates a decoder session for the given stream
func NewAdaptiveDecoder(strm *Stream) (*AdaptiveDecoder, error) {
	cfg, err := newConfig(strm)

	if err != nil {
		return nil, err
	}

	this := &AdaptiveDecoder{}
	this.strm = strm
	this.cfg = cfg
	this.writer = cfg.newSampleWriter()
	this.data = make([]uint32, cfg.rsi*cfg.blockSize)
	strm.TotalIn = 0
	strm.TotalOut = 0
	return this, nil
}

// Decode reconstructs len(NextOut) bytes worth of samples from the
// coded stream in NextIn. A truncated or corrupt stream yields a data
// error.
func (this *AdaptiveDecoder) Decode() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{msg: fmt.Sprintf("Corrupt coded stream: %v", r), code: aec.ERR_DATA}
		}
	}()

	strm := this.strm
	cfg := this.cfg

	if len(strm.NextOut)%cfg.bytesPerSample != 0 {
		return &Error{msg: "Output length is not a whole number of samples", code: aec.ERR_CONF}
	}

	inLen := len(strm.NextIn)
	outLen := len(strm.NextOut)
	br := bitstream.NewCDSReader(strm.NextIn)
	remaining := outLen / cfg.bytesPerSample

	for remaining > 0 {
		n := cfg.rsi * cfg.blockSize

		if remaining < n {
			n = remaining
		}

		d := this.decodeRSI(br, n)

		if cfg.preprocess {
			this.postprocessRSI(d)
		}

		for i := 0; i < n; i++ {
			this.writer.sample(strm, d[i]&cfg.sampleMask)
		}

		remaining -= n
	}

	strm.NextIn = strm.NextIn[(br.Read()+7)/8:]
	strm.TotalIn += uint64(inLen - len(strm.NextIn))
	strm.TotalOut += uint64(outLen - len(strm.NextOut))
	return nil
}

// Dispose releases the session buffers
func (this *AdaptiveDecoder) Dispose() error {
	this.data = nil
	return nil
}

// BufferDecode is the one shot convenience entry point mirroring
// BufferEncode
func BufferDecode(strm *Stream) error {
	dec, err := NewAdaptiveDecoder(strm)

	if err != nil {
		return err
	}

	if err := dec.Decode(); err != nil {
		dec.Dispose()
		return err
	}

	return dec.Dispose()
}

// decodeRSI parses the coded data sets of one reference sample
// interval carrying nSamples real samples (a padded final interval may
// carry fewer than rsi * blockSize) and returns the residual buffer
func (this *AdaptiveDecoder) decodeRSI(br *bitstream.CDSReader, nSamples int) []uint32 {
	cfg := this.cfg
	bs := cfg.blockSize
	blocks := (nSamples + bs - 1) / bs
	d := this.data[:blocks*bs]
	uncompID := (uint32(1) << cfg.idLen) - 1
	ref := 0

	if cfg.preprocess {
		ref = 1
	}

	b := 0

	for b < blocks {
		id := br.ReadBits(cfg.idLen)
		base := b * bs
		isRef := ref == 1 && b == 0

		switch {
		case id == uncompID:
			for j := 0; j < bs; j++ {
				d[base+j] = br.ReadBits(cfg.bitsPerSample)
			}

			b++

		case id != 0:
			// splitting with k = id - 1: all fundamental sequence
			// parts come first, then the k low bits of every sample
			k := uint(id - 1)
			off := 0

			if isRef {
				d[base] = br.ReadBits(cfg.bitsPerSample)
				off = 1
			}

			var q [64]uint32
			m := bs - off

			for j := 0; j < m; j++ {
				q[j] = br.ReadFS()
			}

			for j := 0; j < m; j++ {
				if k > 0 {
					d[base+off+j] = q[j]<<k | br.ReadBits(k)
				} else {
					d[base+off+j] = q[j]
				}
			}

			b++

		default:
			if br.ReadBit() == 1 {
				this.decodeSE(br, d[base:base+bs], isRef)
				b++
			} else {
				b += this.decodeZeroRun(br, d, b, blocks, isRef)
			}
		}
	}

	if cfg.padRSI {
		br.Align()
	}

	return d
}

// decodeSE parses one second extension block: per pair a fundamental
// sequence value m = s*(s+1)/2 + b with s = a + b, inverted through
// the triangular root
func (this *AdaptiveDecoder) decodeSE(br *bitstream.CDSReader, d []uint32, isRef bool) {
	var refSample uint32

	if isRef {
		refSample = br.ReadBits(this.cfg.bitsPerSample)
	}

	for j := 0; j < len(d); j += 2 {
		mv := uint64(br.ReadFS())
		s := uint64(0)

		for (s+1)*(s+2)/2 <= mv {
			s++
		}

		bv := mv - s*(s+1)/2
		d[j] = uint32(s - bv)
		d[j+1] = uint32(bv)
	}

	if isRef {
		// the literal reference sample wins over the pair value
		d[0] = refSample
	}
}

// decodeZeroRun parses one zero block run starting at block index b
// and returns the run length in blocks. The fundamental sequence value
// 4 is the ROS escape: the run extends to the end of the current 64
// block segment or of the interval, whichever comes first.
func (this *AdaptiveDecoder) decodeZeroRun(br *bitstream.CDSReader, d []uint32, b, blocks int, isRef bool) int {
	cfg := this.cfg
	bs := cfg.blockSize
	var refSample uint32

	if isRef {
		refSample = br.ReadBits(cfg.bitsPerSample)
	}

	fs := br.ReadFS()
	var run int

	switch {
	case fs < 4:
		run = int(fs) + 1

	case fs == 4:
		// segment boundaries sit where the encoder counted a multiple
		// of 64 consumed blocks; in a padded final interval that count
		// is offset by the missing blocks
		t := (cfg.rsi - blocks + 1 + b) % 64
		j := b + (64-t)%64

		if j > blocks-1 {
			j = blocks - 1
		}

		run = j - b + 1

	default:
		run = int(fs)
	}

	if run > blocks-b {
		run = blocks - b
	}

	base := b * bs

	for j := 0; j < run*bs; j++ {
		d[base+j] = 0
	}

	if isRef {
		d[base] = refSample
	}

	return run
}
