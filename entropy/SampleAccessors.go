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
	"encoding/binary"
)

// sampleReader extracts samples from the stream input cursor. One
// implementation exists per byte layout; the session selects one at
// init time. sample consumes bytesPerSample bytes and returns one
// sample, rsi consumes a whole reference sample interval in one shot.
// Callers check availability before calling.
type sampleReader interface {
	sample(strm *Stream) uint32
	rsi(strm *Stream, dst []uint32)
}

// sampleWriter is the decoder side counterpart: it appends one sample
// to the stream output cursor.
type sampleWriter interface {
	sample(strm *Stream, v uint32)
}

func (this *config) newSampleReader() sampleReader {
	switch this.bytesPerSample {
	case 1:
		return reader8{}
	case 2:
		if this.msb {
			return readerMSB16{}
		}
		return readerLSB16{}
	case 3:
		if this.msb {
			return readerMSB24{}
		}
		return readerLSB24{}
	default:
		if this.msb {
			return readerMSB32{}
		}
		return readerLSB32{}
	}
}

func (this *config) newSampleWriter() sampleWriter {
	switch this.bytesPerSample {
	case 1:
		return writer8{}
	case 2:
		if this.msb {
			return writerMSB16{}
		}
		return writerLSB16{}
	case 3:
		if this.msb {
			return writerMSB24{}
		}
		return writerLSB24{}
	default:
		if this.msb {
			return writerMSB32{}
		}
		return writerLSB32{}
	}
}

type reader8 struct{}

func (reader8) sample(strm *Stream) uint32 {
	v := uint32(strm.NextIn[0])
	strm.NextIn = strm.NextIn[1:]
	return v
}

func (reader8) rsi(strm *Stream, dst []uint32) {
	in := strm.NextIn

	for i := range dst {
		dst[i] = uint32(in[i])
	}

	strm.NextIn = in[len(dst):]
}

type readerMSB16 struct{}

func (readerMSB16) sample(strm *Stream) uint32 {
	v := uint32(binary.BigEndian.Uint16(strm.NextIn))
	strm.NextIn = strm.NextIn[2:]
	return v
}

func (readerMSB16) rsi(strm *Stream, dst []uint32) {
	in := strm.NextIn

	for i := range dst {
		dst[i] = uint32(binary.BigEndian.Uint16(in[2*i:]))
	}

	strm.NextIn = in[2*len(dst):]
}

type readerLSB16 struct{}

func (readerLSB16) sample(strm *Stream) uint32 {
	v := uint32(binary.LittleEndian.Uint16(strm.NextIn))
	strm.NextIn = strm.NextIn[2:]
	return v
}

func (readerLSB16) rsi(strm *Stream, dst []uint32) {
	in := strm.NextIn

	for i := range dst {
		dst[i] = uint32(binary.LittleEndian.Uint16(in[2*i:]))
	}

	strm.NextIn = in[2*len(dst):]
}

type readerMSB24 struct{}

func (readerMSB24) sample(strm *Stream) uint32 {
	in := strm.NextIn
	v := uint32(in[0])<<16 | uint32(in[1])<<8 | uint32(in[2])
	strm.NextIn = in[3:]
	return v
}

func (readerMSB24) rsi(strm *Stream, dst []uint32) {
	in := strm.NextIn

	for i := range dst {
		dst[i] = uint32(in[3*i])<<16 | uint32(in[3*i+1])<<8 | uint32(in[3*i+2])
	}

	strm.NextIn = in[3*len(dst):]
}

type readerLSB24 struct{}

func (readerLSB24) sample(strm *Stream) uint32 {
	in := strm.NextIn
	v := uint32(in[2])<<16 | uint32(in[1])<<8 | uint32(in[0])
	strm.NextIn = in[3:]
	return v
}

func (readerLSB24) rsi(strm *Stream, dst []uint32) {
	in := strm.NextIn

	for i := range dst {
		dst[i] = uint32(in[3*i+2])<<16 | uint32(in[3*i+1])<<8 | uint32(in[3*i])
	}

	strm.NextIn = in[3*len(dst):]
}

type readerMSB32 struct{}

func (readerMSB32) sample(strm *Stream) uint32 {
	v := binary.BigEndian.Uint32(strm.NextIn)
	strm.NextIn = strm.NextIn[4:]
	return v
}

func (readerMSB32) rsi(strm *Stream, dst []uint32) {
	in := strm.NextIn

	for i := range dst {
		dst[i] = binary.BigEndian.Uint32(in[4*i:])
	}

	strm.NextIn = in[4*len(dst):]
}

type readerLSB32 struct{}

func (readerLSB32) sample(strm *Stream) uint32 {
	v := binary.LittleEndian.Uint32(strm.NextIn)
	strm.NextIn = strm.NextIn[4:]
	return v
}

func (readerLSB32) rsi(strm *Stream, dst []uint32) {
	in := strm.NextIn

	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(in[4*i:])
	}

	strm.NextIn = in[4*len(dst):]
}

type writer8 struct{}

func (writer8) sample(strm *Stream, v uint32) {
	strm.NextOut[0] = byte(v)
	strm.NextOut = strm.NextOut[1:]
}

type writerMSB16 struct{}

func (writerMSB16) sample(strm *Stream, v uint32) {
	binary.BigEndian.PutUint16(strm.NextOut, uint16(v))
	strm.NextOut = strm.NextOut[2:]
}

type writerLSB16 struct{}

func (writerLSB16) sample(strm *Stream, v uint32) {
	binary.LittleEndian.PutUint16(strm.NextOut, uint16(v))
	strm.NextOut = strm.NextOut[2:]
}

type writerMSB24 struct{}

func (writerMSB24) sample(strm *Stream, v uint32) {
	out := strm.NextOut
	out[0] = byte(v >> 16)
	out[1] = byte(v >> 8)
	out[2] = byte(v)
	strm.NextOut = out[3:]
}

type writerLSB24 struct{}

func (writerLSB24) sample(strm *Stream, v uint32) {
	out := strm.NextOut
	out[0] = byte(v)
	out[1] = byte(v >> 8)
	out[2] = byte(v >> 16)
	strm.NextOut = out[3:]
}

type writerMSB32 struct{}

func (writerMSB32) sample(strm *Stream, v uint32) {
	binary.BigEndian.PutUint32(strm.NextOut, v)
	strm.NextOut = strm.NextOut[4:]
}

type writerLSB32 struct{}

func (writerLSB32) sample(strm *Stream, v uint32) {
	binary.LittleEndian.PutUint32(strm.NextOut, v)
	strm.NextOut = strm.NextOut[4:]
}
