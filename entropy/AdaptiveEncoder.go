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
	aec "github.com/telemetric/aec-go"
	"github.com/telemetric/aec-go/bitstream"
)

// encodeMode enumerates the states of the encoder state machine
type encodeMode int

const (
	mGetBlock encodeMode = iota
	mGetRSIResumable
	mCheckZeroBlock
	mSelectCodeOption
	mEncodeSplitting
	mEncodeUncomp
	mEncodeSE
	mEncodeZero
	mFlushBlock
	mFlushBlockResumable
)

// AdaptiveEncoder is a resumable CCSDS 121.0-B-2 encoder session. It
// pulls one reference sample interval of samples at a time, optionally
// maps them to residuals, selects the cheapest code option per block
// and bit packs the coded data sets into the stream output.
//
// A session is owned by a single caller. Encode may return with input
// left unconsumed or output space left unfilled; the caller refills the
// stream cursors and calls Encode again.
type AdaptiveEncoder struct {
	strm   *Stream
	cfg    *config
	reader sampleReader
	bw     *bitstream.CDSWriter

	dataRaw []uint32
	dataPP  []uint32
	cdsBuf  []byte

	block       []uint32
	blockOff    int
	blocksAvail int
	ref         int
	uncompLen   uint32
	k           int

	zeroBlocks    int
	zeroRef       int
	zeroRefSample uint32
	blockNonzero  bool

	i         int
	mode      encodeMode
	flush     int
	flushed   bool
	directOut bool
}

// NewAdaptiveEncoder creates an encoder session for the given stream.
// The stream configuration is validated and the working buffers are
// allocated; the input and output cursors may be filled later.
func NewAdaptiveEncoder(strm *Stream) (*AdaptiveEncoder, error) {
	cfg, err := newConfig(strm)

	if err != nil {
		return nil, err
	}

	this := &AdaptiveEncoder{}
	this.strm = strm
	this.cfg = cfg
	this.reader = cfg.newSampleReader()
	this.dataPP = make([]uint32, cfg.rsi*cfg.blockSize)

	if cfg.preprocess {
		this.dataRaw = make([]uint32, cfg.rsi*cfg.blockSize)
	} else {
		// without preprocessing the mapped view aliases the raw view
		this.dataRaw = this.dataPP
	}

	this.block = this.dataPP[0:cfg.blockSize]
	this.uncompLen = uint32(cfg.blockSize) * uint32(cfg.bitsPerSample)
	this.cdsBuf = make([]byte, _CDS_LEN)
	this.bw = bitstream.NewCDSWriter(this.cdsBuf)
	this.mode = mGetBlock
	strm.TotalIn = 0
	strm.TotalOut = 0
	return this, nil
}

// Encode runs the state machine until it yields: either all input has
// been consumed (pass aec.NO_FLUSH while more data follows, aec.FLUSH
// for the final call) or the output buffer is full.
func (this *AdaptiveEncoder) Encode(flush int) error {
	strm := this.strm
	this.flush = flush
	strm.TotalIn += uint64(len(strm.NextIn))
	strm.TotalOut += uint64(len(strm.NextOut))

	for this.step() == _M_CONTINUE {
	}

	if this.directOut {
		n := this.bw.Pos()
		strm.NextOut = strm.NextOut[n:]

		// keep the pending partial byte in the staging buffer so the
		// next call may stage or go direct again
		this.bw.Rebase(this.cdsBuf)
		this.directOut = false
	}

	strm.TotalIn -= uint64(len(strm.NextIn))
	strm.TotalOut -= uint64(len(strm.NextOut))
	return nil
}

// Flushed returns true once a requested final flush has delivered the
// last byte of the coded stream
func (this *AdaptiveEncoder) Flushed() bool {
	return this.flushed
}

// BytesPerSample returns the sample storage width derived from the
// stream configuration
func (this *AdaptiveEncoder) BytesPerSample() int {
	return this.cfg.bytesPerSample
}

// RSILen returns the raw byte length of one reference sample interval
func (this *AdaptiveEncoder) RSILen() int {
	return this.cfg.rsiLen
}

// Dispose releases the session buffers. It returns a stream error when
// a final flush was requested but the coded stream was not completely
// delivered.
func (this *AdaptiveEncoder) Dispose() error {
	var err error

	if this.flush == aec.FLUSH && this.flushed == false {
		err = &Error{msg: "Incomplete flush: the coded stream was not fully delivered",
			code: aec.ERR_STREAM}
	}

	this.dataRaw = nil
	this.dataPP = nil
	this.block = nil
	this.cdsBuf = nil
	return err
}

// BufferEncode is the one shot convenience entry point: it creates a
// session, encodes the whole of NextIn into NextOut with a final flush
// and disposes the session.
func BufferEncode(strm *Stream) error {
	enc, err := NewAdaptiveEncoder(strm)

	if err != nil {
		return err
	}

	if err := enc.Encode(aec.FLUSH); err != nil {
		enc.Dispose()
		return err
	}

	return enc.Dispose()
}

func (this *AdaptiveEncoder) step() int {
	switch this.mode {
	case mGetBlock:
		return this.getBlock()
	case mGetRSIResumable:
		return this.getRSIResumable()
	case mCheckZeroBlock:
		return this.checkZeroBlock()
	case mSelectCodeOption:
		return this.selectCodeOption()
	case mEncodeSplitting:
		return this.encodeSplitting()
	case mEncodeUncomp:
		return this.encodeUncomp()
	case mEncodeSE:
		return this.encodeSE()
	case mEncodeZero:
		return this.encodeZero()
	case mFlushBlock:
		return this.flushBlock()
	default:
		return this.flushBlockResumable()
	}
}

// initOutput directs output into NextOut when it can hold a worst case
// coded data set, into the internal staging buffer otherwise. Both
// switches carry the pending partial byte so the bit cursor continues
// exactly where it stopped.
func (this *AdaptiveEncoder) initOutput() {
	strm := this.strm

	if len(strm.NextOut) > _CDS_LEN {
		if this.directOut == false {
			this.directOut = true
			this.bw.Rebase(strm.NextOut)
		}
	} else {
		if this.zeroBlocks == 0 || this.directOut {
			// copy leftover from the last block
			this.bw.Rebase(this.cdsBuf)
		}

		this.directOut = false
	}
}

// getBlock provides the next block of mapped input data, pulling in a
// whole reference sample interval when the block buffer is empty
func (this *AdaptiveEncoder) getBlock() int {
	strm := this.strm
	cfg := this.cfg
	this.initOutput()

	if this.blockNonzero {
		// a non zero block was deferred behind a zero run which has
		// now been emitted
		this.blockNonzero = false
		this.mode = mSelectCodeOption
		return _M_CONTINUE
	}

	if this.blocksAvail == 0 {
		this.blocksAvail = cfg.rsi - 1
		this.blockOff = 0
		this.block = this.dataPP[0:cfg.blockSize]

		if len(strm.NextIn) >= cfg.rsiLen {
			this.reader.rsi(strm, this.dataRaw)

			if cfg.preprocess {
				this.preprocessRSI()
			}

			this.mode = mCheckZeroBlock
			return _M_CONTINUE
		}

		this.i = 0
		this.mode = mGetRSIResumable
		return _M_CONTINUE
	}

	if this.ref != 0 {
		this.ref = 0
		this.uncompLen = uint32(cfg.blockSize) * uint32(cfg.bitsPerSample)
	}

	this.blockOff += cfg.blockSize
	this.block = this.dataPP[this.blockOff : this.blockOff+cfg.blockSize]
	this.blocksAvail--
	this.mode = mCheckZeroBlock
	return _M_CONTINUE
}

// getRSIResumable ingests samples one at a time while the input buffer
// is short, yielding to the caller when it runs dry. On a final flush a
// partially filled interval is padded by replicating the last sample.
func (this *AdaptiveEncoder) getRSIResumable() int {
	strm := this.strm
	cfg := this.cfg
	n := cfg.rsi * cfg.blockSize

	for {
		if len(strm.NextIn) >= cfg.bytesPerSample {
			this.dataRaw[this.i] = this.reader.sample(strm)
		} else {
			if this.flush != aec.FLUSH {
				return _M_EXIT
			}

			if this.i == 0 {
				// nothing buffered: pad the pending byte with zero
				// bits and deliver it
				this.bw.Emit(0, this.bw.Bits())

				if len(strm.NextOut) > 0 {
					if this.directOut == false {
						strm.NextOut[0] = this.bw.Current()
					}

					strm.NextOut = strm.NextOut[1:]
					this.flushed = true
				}

				return _M_EXIT
			}

			this.blocksAvail = this.i/cfg.blockSize - 1

			if this.i%cfg.blockSize != 0 {
				this.blocksAvail++
			}

			for this.i < n {
				this.dataRaw[this.i] = this.dataRaw[this.i-1]
				this.i++
			}

			break
		}

		this.i++

		if this.i >= n {
			break
		}
	}

	if cfg.preprocess {
		this.preprocessRSI()
	}

	this.mode = mCheckZeroBlock
	return _M_CONTINUE
}

// checkZeroBlock aggregates consecutive all zero blocks until a non
// zero block, the end of a 64 block segment or the end of the interval
// forces the run out
func (this *AdaptiveEncoder) checkZeroBlock() int {
	cfg := this.cfg
	i := this.ref

	for i < cfg.blockSize && this.block[i] == 0 {
		i++
	}

	if i < cfg.blockSize {
		if this.zeroBlocks > 0 {
			// the current block is not zero but a pending zero run
			// must be emitted first; flag the block and handle it
			// after the run
			this.blockNonzero = true
			this.mode = mEncodeZero
			return _M_CONTINUE
		}

		this.mode = mSelectCodeOption
		return _M_CONTINUE
	}

	this.zeroBlocks++

	if this.zeroBlocks == 1 {
		this.zeroRef = this.ref
		this.zeroRefSample = this.block[0]
	}

	if this.blocksAvail == 0 || (cfg.rsi-this.blocksAvail)%64 == 0 {
		if this.zeroBlocks > 4 {
			this.zeroBlocks = _ROS
		}

		this.mode = mEncodeZero
		return _M_CONTINUE
	}

	this.mode = mGetBlock
	return _M_CONTINUE
}

func (this *AdaptiveEncoder) encodeSplitting() int {
	cfg := this.cfg
	k := this.k
	this.bw.Emit(uint32(k)+1, cfg.idLen)

	if this.ref != 0 {
		this.bw.Emit(this.block[0], cfg.bitsPerSample)
	}

	this.bw.EmitBlockFS(this.block[this.ref:], uint(k))

	if k > 0 {
		this.bw.EmitBlock(this.block[this.ref:], uint(k))
	}

	this.mode = mFlushBlock
	return _M_CONTINUE
}

func (this *AdaptiveEncoder) encodeUncomp() int {
	cfg := this.cfg
	this.bw.Emit((uint32(1)<<cfg.idLen)-1, cfg.idLen)
	this.bw.EmitBlock(this.block, cfg.bitsPerSample)
	this.mode = mFlushBlock
	return _M_CONTINUE
}

func (this *AdaptiveEncoder) encodeSE() int {
	cfg := this.cfg
	this.bw.Emit(1, cfg.idLen+1)

	if this.ref != 0 {
		this.bw.Emit(this.block[0], cfg.bitsPerSample)
	}

	for i := 0; i < cfg.blockSize; i += 2 {
		d := this.block[i] + this.block[i+1]
		this.bw.EmitFS(d*(d+1)/2 + this.block[i+1])
	}

	this.mode = mFlushBlock
	return _M_CONTINUE
}

func (this *AdaptiveEncoder) encodeZero() int {
	cfg := this.cfg
	this.bw.Emit(0, cfg.idLen+1)

	if this.zeroRef != 0 {
		this.bw.Emit(this.zeroRefSample, cfg.bitsPerSample)
	}

	if this.zeroBlocks == _ROS {
		this.bw.EmitFS(4)
	} else if this.zeroBlocks >= 5 {
		this.bw.EmitFS(uint32(this.zeroBlocks))
	} else {
		this.bw.EmitFS(uint32(this.zeroBlocks) - 1)
	}

	this.zeroBlocks = 0
	this.mode = mFlushBlock
	return _M_CONTINUE
}

// flushBlock completes a coded data set: in direct mode the stream
// cursor is advanced past the bytes produced, in buffered mode the
// staging buffer is drained through flushBlockResumable
func (this *AdaptiveEncoder) flushBlock() int {
	strm := this.strm

	if this.blocksAvail == 0 && this.cfg.padRSI && this.blockNonzero == false {
		this.bw.Emit(0, this.bw.Bits()%8)
	}

	if this.directOut {
		n := this.bw.Pos()
		strm.NextOut = strm.NextOut[n:]
		this.bw.Rebase(strm.NextOut)
		this.mode = mGetBlock
		return _M_CONTINUE
	}

	this.i = 0
	this.mode = mFlushBlockResumable
	return _M_CONTINUE
}

// flushBlockResumable drains the staging buffer into NextOut across as
// many calls as the output space requires
func (this *AdaptiveEncoder) flushBlockResumable() int {
	strm := this.strm
	n := this.bw.Pos() - this.i

	if n > len(strm.NextOut) {
		n = len(strm.NextOut)
	}

	copy(strm.NextOut, this.cdsBuf[this.i:this.i+n])
	strm.NextOut = strm.NextOut[n:]
	this.i += n

	if len(strm.NextOut) == 0 {
		return _M_EXIT
	}

	this.mode = mGetBlock
	return _M_CONTINUE
}
