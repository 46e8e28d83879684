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

// Package io provides a Writer and a Reader wrapping the adaptive
// entropy codec in a self describing stream format.
//
// A CCSDS 121 coded stream alone is not self terminating, so the
// container carries a small header with the codec configuration and
// cuts the payload into independently coded segments:
//
//	header | segment ... segment | end marker
//
// Each segment holds up to a fixed number of reference sample
// intervals of raw sample bytes, compressed in one shot. A segment of
// raw length zero marks the end of the stream. When checksums are
// enabled every segment header carries the XXHash64 of its raw bytes.
package io

import (
	"fmt"
	"io"
	"time"

	aec "github.com/telemetric/aec-go"
	"github.com/telemetric/aec-go/bitstream"
	"github.com/telemetric/aec-go/entropy"
	"github.com/telemetric/aec-go/hash"
)

const (
	_BITSTREAM_TYPE           = 0x41454353 // "AECS"
	_BITSTREAM_FORMAT_VERSION = 1
	_HEADER_LEN               = 10
	_SEGMENT_MIN_SIZE         = 65536
	_HASH_SEED                = uint64(_BITSTREAM_TYPE)
)

// IOError an extended error containing a message and a code value
type IOError struct {
	msg  string
	code int
}

// Error returns the underlying error
func (this IOError) Error() string {
	return fmt.Sprintf("%v (code %v)", this.msg, this.code)
}

// Message returns the message string associated with the error
func (this IOError) Message() string {
	return this.msg
}

// ErrorCode returns the code value associated with the error
func (this IOError) ErrorCode() int {
	return this.code
}

func notifyListeners(listeners []aec.Listener, evt *aec.Event) {
	for _, bl := range listeners {
		bl.ProcessEvent(evt)
	}
}

// Writer compresses raw sample bytes into the container format and
// writes the result to the underlying stream
type Writer struct {
	os            io.WriteCloser
	bitsPerSample uint
	blockSize     uint
	rsi           uint
	flags         int
	hasher        *hash.XXHash64
	listeners     []aec.Listener
	buf           []byte
	cds           []byte
	segSize       int
	segmentID     int
	written       uint64
	initialized   bool
	closed        bool
}

// NewWriter creates a new instance of Writer. The codec configuration
// is validated immediately; os receives the container bytes.
func NewWriter(os io.WriteCloser, bitsPerSample, blockSize, rsi uint, flags int, checksum bool) (*Writer, error) {
	if os == nil {
		return nil, &IOError{msg: "Invalid null output stream parameter", code: aec.ERR_CONF}
	}

	probe := entropy.Stream{BitsPerSample: bitsPerSample, BlockSize: blockSize, RSI: rsi, Flags: flags}
	enc, err := entropy.NewAdaptiveEncoder(&probe)

	if err != nil {
		return nil, err
	}

	rsiLen := enc.RSILen()
	enc.Dispose()

	this := &Writer{}
	this.os = os
	this.bitsPerSample = bitsPerSample
	this.blockSize = blockSize
	this.rsi = rsi
	this.flags = flags
	this.segSize = rsiLen

	if this.segSize < _SEGMENT_MIN_SIZE {
		this.segSize = (_SEGMENT_MIN_SIZE / rsiLen) * rsiLen
	}

	this.buf = make([]byte, 0, this.segSize)
	this.cds = make([]byte, this.segSize+this.segSize/2+64)

	if checksum {
		this.hasher, _ = hash.NewXXHash64(_HASH_SEED)
	}

	this.listeners = make([]aec.Listener, 0)
	return this, nil
}

// AddListener adds an event listener to this writer.
// Returns true if the listener has been added.
func (this *Writer) AddListener(bl aec.Listener) bool {
	if bl == nil {
		return false
	}

	this.listeners = append(this.listeners, bl)
	return true
}

func (this *Writer) writeHeader() error {
	var hdr [_HEADER_LEN + 8]byte
	bw := bitstream.NewCDSWriter(hdr[:])
	cksum := uint32(0)

	if this.hasher != nil {
		cksum = 1
	}

	bw.Emit(_BITSTREAM_TYPE, 32)
	bw.Emit(_BITSTREAM_FORMAT_VERSION, 4)
	bw.Emit(cksum, 1)
	bw.Emit(uint32(this.bitsPerSample), 6)
	bw.Emit(uint32(this.blockSize), 7)
	bw.Emit(uint32(this.rsi), 13)
	bw.Emit(uint32(this.flags), 8)
	bw.Emit(headerChecksum(cksum, uint32(this.bitsPerSample), uint32(this.blockSize),
		uint32(this.rsi), uint32(this.flags)), 4)
	bw.Emit(0, bw.Bits()%8)

	if _, err := this.os.Write(hdr[0:_HEADER_LEN]); err != nil {
		return &IOError{msg: fmt.Sprintf("Cannot write header: %v", err), code: aec.ERR_IO}
	}

	this.written += _HEADER_LEN
	return nil
}

func headerChecksum(fields ...uint32) uint32 {
	const _HASH = uint32(0x1E35A7BD)
	ck := _HASH * _BITSTREAM_FORMAT_VERSION

	for _, f := range fields {
		ck ^= _HASH * f
	}

	return ((ck >> 23) ^ (ck >> 3)) & 0xF
}

// Write buffers len(block) raw sample bytes, compressing and emitting
// a segment each time one fills up. Returns the number of bytes taken
// from block and any error that stopped the write early.
func (this *Writer) Write(block []byte) (int, error) {
	if this.closed {
		return 0, &IOError{msg: "Stream closed", code: aec.ERR_IO}
	}

	off := 0

	for off < len(block) {
		n := this.segSize - len(this.buf)

		if n > len(block)-off {
			n = len(block) - off
		}

		this.buf = append(this.buf, block[off:off+n]...)
		off += n

		if len(this.buf) == this.segSize {
			if err := this.processSegment(); err != nil {
				return off, err
			}
		}
	}

	return off, nil
}

func (this *Writer) processSegment() error {
	if this.initialized == false {
		if err := this.writeHeader(); err != nil {
			return err
		}

		this.initialized = true
	}

	if len(this.buf) == 0 {
		return nil
	}

	strm := entropy.Stream{
		NextIn:        this.buf,
		NextOut:       this.cds,
		BitsPerSample: this.bitsPerSample,
		BlockSize:     this.blockSize,
		RSI:           this.rsi,
		Flags:         this.flags,
	}

	if err := entropy.BufferEncode(&strm); err != nil {
		return err
	}

	rawLen := len(this.buf)
	cdsLen := int(strm.TotalOut)
	var shdr [16]byte
	hw := bitstream.NewCDSWriter(shdr[:])
	hw.Emit(uint32(rawLen), 32)
	hw.Emit(uint32(cdsLen), 32)
	n := 8

	if this.hasher != nil {
		h := this.hasher.Hash(this.buf)
		hw.Emit(uint32(h>>32), 32)
		hw.Emit(uint32(h), 32)
		n = 16
	}

	if _, err := this.os.Write(shdr[0:n]); err != nil {
		return &IOError{msg: fmt.Sprintf("Cannot write segment header: %v", err), code: aec.ERR_IO}
	}

	if _, err := this.os.Write(this.cds[0:cdsLen]); err != nil {
		return &IOError{msg: fmt.Sprintf("Cannot write segment: %v", err), code: aec.ERR_IO}
	}

	this.written += uint64(n + cdsLen)
	this.segmentID++

	if len(this.listeners) > 0 {
		evt := aec.NewEventFromString(aec.EVT_AFTER_SEGMENT, this.segmentID,
			fmt.Sprintf("{ \"type\":\"AFTER_SEGMENT\", \"id\":%d, \"raw\":%d, \"coded\":%d }",
				this.segmentID, rawLen, cdsLen), time.Time{})
		notifyListeners(this.listeners, evt)
	}

	this.buf = this.buf[:0]
	return nil
}

// Close compresses any buffered data, writes the end marker and closes
// the underlying stream. Idempotent.
func (this *Writer) Close() error {
	if this.closed {
		return nil
	}

	if err := this.processSegment(); err != nil {
		return err
	}

	// end marker: segment of raw length 0
	var end [8]byte

	if _, err := this.os.Write(end[:]); err != nil {
		return &IOError{msg: fmt.Sprintf("Cannot write end marker: %v", err), code: aec.ERR_IO}
	}

	this.written += 8
	this.closed = true

	if len(this.listeners) > 0 {
		evt := aec.NewEventFromString(aec.EVT_ENCODING_END, -1,
			fmt.Sprintf("{ \"type\":\"ENCODING_END\", \"written\":%d }", this.written), time.Time{})
		notifyListeners(this.listeners, evt)
	}

	return this.os.Close()
}

// GetWritten returns the number of container bytes written so far
func (this *Writer) GetWritten() uint64 {
	return this.written
}

// Reader decompresses a container stream produced by Writer
type Reader struct {
	is            io.ReadCloser
	bitsPerSample uint
	blockSize     uint
	rsi           uint
	flags         int
	hasher        *hash.XXHash64
	listeners     []aec.Listener
	pending       []byte
	off           int
	segmentID     int
	read          uint64
	initialized   bool
	eos           bool
	closed        bool
}

// NewReader creates a new instance of Reader. The codec configuration
// is read from the container header on the first Read call.
func NewReader(is io.ReadCloser) (*Reader, error) {
	if is == nil {
		return nil, &IOError{msg: "Invalid null input stream parameter", code: aec.ERR_CONF}
	}

	this := &Reader{}
	this.is = is
	this.listeners = make([]aec.Listener, 0)
	return this, nil
}

// AddListener adds an event listener to this reader.
// Returns true if the listener has been added.
func (this *Reader) AddListener(bl aec.Listener) bool {
	if bl == nil {
		return false
	}

	this.listeners = append(this.listeners, bl)
	return true
}

func (this *Reader) readHeader() error {
	var hdr [_HEADER_LEN]byte

	if _, err := io.ReadFull(this.is, hdr[:]); err != nil {
		return &IOError{msg: fmt.Sprintf("Cannot read header: %v", err), code: aec.ERR_IO}
	}

	br := bitstream.NewCDSReader(hdr[:])

	if br.ReadBits(32) != _BITSTREAM_TYPE {
		return &IOError{msg: "Invalid stream type", code: aec.ERR_DATA}
	}

	if br.ReadBits(4) != _BITSTREAM_FORMAT_VERSION {
		return &IOError{msg: "Invalid stream format version", code: aec.ERR_DATA}
	}

	cksum := br.ReadBits(1)
	this.bitsPerSample = uint(br.ReadBits(6))
	this.blockSize = uint(br.ReadBits(7))
	this.rsi = uint(br.ReadBits(13))
	this.flags = int(br.ReadBits(8))

	if br.ReadBits(4) != headerChecksum(cksum, uint32(this.bitsPerSample),
		uint32(this.blockSize), uint32(this.rsi), uint32(this.flags)) {
		return &IOError{msg: "Corrupt stream header", code: aec.ERR_DATA}
	}

	if cksum != 0 {
		this.hasher, _ = hash.NewXXHash64(_HASH_SEED)
	}

	this.read += _HEADER_LEN

	if len(this.listeners) > 0 {
		evt := aec.NewEventFromString(aec.EVT_AFTER_HEADER, -1,
			fmt.Sprintf("{ \"type\":\"AFTER_HEADER\", \"bitsPerSample\":%d, \"blockSize\":%d, \"rsi\":%d, \"flags\":%d }",
				this.bitsPerSample, this.blockSize, this.rsi, this.flags), time.Time{})
		notifyListeners(this.listeners, evt)
	}

	return nil
}

func (this *Reader) readSegment() error {
	var shdr [16]byte

	if _, err := io.ReadFull(this.is, shdr[0:8]); err != nil {
		return &IOError{msg: fmt.Sprintf("Cannot read segment header: %v", err), code: aec.ERR_IO}
	}

	br := bitstream.NewCDSReader(shdr[:])
	rawLen := int(br.ReadBits(32))
	cdsLen := int(br.ReadBits(32))
	this.read += 8

	// the end marker carries no checksum
	if rawLen == 0 {
		this.eos = true
		return nil
	}

	var expected uint64

	if this.hasher != nil {
		if _, err := io.ReadFull(this.is, shdr[8:16]); err != nil {
			return &IOError{msg: fmt.Sprintf("Cannot read segment header: %v", err), code: aec.ERR_IO}
		}

		expected = uint64(br.ReadBits(32))<<32 | uint64(br.ReadBits(32))
		this.read += 8
	}

	cds := make([]byte, cdsLen)

	if _, err := io.ReadFull(this.is, cds); err != nil {
		return &IOError{msg: fmt.Sprintf("Cannot read segment: %v", err), code: aec.ERR_IO}
	}

	this.read += uint64(cdsLen)
	raw := make([]byte, rawLen)
	strm := entropy.Stream{
		NextIn:        cds,
		NextOut:       raw,
		BitsPerSample: this.bitsPerSample,
		BlockSize:     this.blockSize,
		RSI:           this.rsi,
		Flags:         this.flags,
	}

	if err := entropy.BufferDecode(&strm); err != nil {
		return err
	}

	if this.hasher != nil && this.hasher.Hash(raw) != expected {
		return &IOError{msg: fmt.Sprintf("Corrupt segment %d: invalid checksum", this.segmentID+1),
			code: aec.ERR_DATA}
	}

	this.segmentID++

	if len(this.listeners) > 0 {
		evt := aec.NewEventFromString(aec.EVT_AFTER_SEGMENT, this.segmentID,
			fmt.Sprintf("{ \"type\":\"AFTER_SEGMENT\", \"id\":%d, \"raw\":%d, \"coded\":%d }",
				this.segmentID, rawLen, cdsLen), time.Time{})
		notifyListeners(this.listeners, evt)
	}

	this.pending = raw
	this.off = 0
	return nil
}

// Read fills p with decompressed raw sample bytes. Returns io.EOF
// after the end marker has been consumed.
func (this *Reader) Read(p []byte) (int, error) {
	if this.closed {
		return 0, &IOError{msg: "Stream closed", code: aec.ERR_IO}
	}

	if this.initialized == false {
		if err := this.readHeader(); err != nil {
			return 0, err
		}

		this.initialized = true
	}

	off := 0

	for off < len(p) {
		if this.off == len(this.pending) {
			if this.eos {
				break
			}

			if err := this.readSegment(); err != nil {
				return off, err
			}

			continue
		}

		n := copy(p[off:], this.pending[this.off:])
		this.off += n
		off += n
	}

	if off == 0 && this.eos {
		return 0, io.EOF
	}

	return off, nil
}

// Close releases the pending buffer and closes the underlying stream.
// Idempotent.
func (this *Reader) Close() error {
	if this.closed {
		return nil
	}

	this.closed = true
	this.pending = nil
	return this.is.Close()
}

// GetRead returns the number of container bytes consumed so far
func (this *Reader) GetRead() uint64 {
	return this.read
}
