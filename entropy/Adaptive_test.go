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
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	aec "github.com/telemetric/aec-go"
	"github.com/telemetric/aec-go/bitstream"
)

func TestEncodeScenarios(t *testing.T) {
	// all zero block: a single zero run coded data set padded to one byte
	out, err := encode(bytes.Repeat([]byte{0x00}, 8), 8, 8, 1, 0)

	if err != nil {
		t.Fatalf("zero block: %v", err)
	}

	if bytes.Equal(out, []byte{0x08}) == false {
		t.Errorf("zero block: got % X, want 08", out)
	}

	// incompressible block: uncompressed option, all ones ID then the raw samples
	out, err = encode(bytes.Repeat([]byte{0xFF}, 8), 8, 8, 1, 0)

	if err != nil {
		t.Fatalf("incompressible block: %v", err)
	}

	want := append(bytes.Repeat([]byte{0xFF}, 8), 0xE0)

	if bytes.Equal(out, want) == false {
		t.Errorf("incompressible block: got % X, want % X", out, want)
	}

	// gentle ramp: splitting option with k = 1
	out, err = encode([]byte{0, 1, 2, 3, 4, 5, 6, 7}, 8, 8, 1, 0)

	if err != nil {
		t.Fatalf("ramp block: %v", err)
	}

	if bytes.Equal(out, []byte{0x5A, 0x92, 0x22, 0xAA}) == false {
		t.Errorf("ramp block: got % X, want 5A 92 22 AA", out)
	}

	// monotonic signed 16 bit samples under preprocessing: every residual
	// is 2, splitting with k = 0
	raw := make([]byte, 16)

	for i := 0; i < 8; i++ {
		raw[2*i] = 0
		raw[2*i+1] = byte(i)
	}

	out, err = encode(raw, 16, 8, 1, aec.DATA_SIGNED|aec.DATA_PREPROCESS|aec.DATA_MSB)

	if err != nil {
		t.Fatalf("monotonic block: %v", err)
	}

	if len(out) != 6 || out[0] != 0x10 {
		t.Errorf("monotonic block: got % X, want 6 bytes starting with 10", out)
	}

	// 128 zero blocks in one interval: one ROS escape at the 64 block
	// boundary and one for the terminal 64 block segment
	out, err = encode(make([]byte, 128*8), 8, 8, 128, 0)

	if err != nil {
		t.Fatalf("zero interval: %v", err)
	}

	if bytes.Equal(out, []byte{0x00, 0x80, 0x40}) == false {
		t.Errorf("zero interval: got % X, want 00 80 40", out)
	}
}

func encode(raw []byte, bitsPerSample, blockSize, rsi uint, flags int) ([]byte, error) {
	strm := Stream{
		NextIn:        raw,
		NextOut:       make([]byte, 2*len(raw)+1024),
		BitsPerSample: bitsPerSample,
		BlockSize:     blockSize,
		RSI:           rsi,
		Flags:         flags,
	}

	out := strm.NextOut

	if err := BufferEncode(&strm); err != nil {
		return nil, err
	}

	return out[:int(strm.TotalOut)], nil
}

func decode(cds []byte, rawLen int, bitsPerSample, blockSize, rsi uint, flags int) ([]byte, error) {
	strm := Stream{
		NextIn:        cds,
		NextOut:       make([]byte, rawLen),
		BitsPerSample: bitsPerSample,
		BlockSize:     blockSize,
		RSI:           rsi,
		Flags:         flags,
	}

	out := strm.NextOut

	if err := BufferDecode(&strm); err != nil {
		return nil, err
	}

	return out, nil
}

// putSample serializes one raw sample the way the configured extractor
// expects to find it
func putSample(dst []byte, v uint32, bytesPerSample int, msb bool) {
	if msb {
		for i := 0; i < bytesPerSample; i++ {
			dst[i] = byte(v >> uint(8*(bytesPerSample-1-i)))
		}
	} else {
		for i := 0; i < bytesPerSample; i++ {
			dst[i] = byte(v >> uint(8*i))
		}
	}
}

func generate(r *rand.Rand, pattern string, nbSamples int, bitsPerSample uint, signed bool,
	bytesPerSample int, msb bool) []byte {
	mask := uint32((uint64(1) << bitsPerSample) - 1)
	raw := make([]byte, nbSamples*bytesPerSample)

	for i := 0; i < nbSamples; i++ {
		var v uint32

		switch pattern {
		case "zeros":
			v = 0

		case "constant":
			v = mask - mask>>2

		case "ramp":
			v = uint32(i) & mask

		case "smooth":
			v = uint32(int(mask>>1)+r.Intn(5)-2) & mask

		default:
			v = uint32(r.Int63()) & mask
		}

		if signed {
			v &= mask
		}

		putSample(raw[i*bytesPerSample:], v, bytesPerSample, msb)
	}

	return raw
}

func TestRoundTripGrid(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	bitsGrid := []uint{1, 2, 3, 4, 5, 8, 10, 12, 16, 24, 32}
	blockGrid := []uint{8, 16, 32, 64}
	rsiGrid := []uint{1, 2, 8, 128}
	patterns := []string{"zeros", "constant", "ramp", "smooth", "random"}
	nbConfigs := 0

	for _, bits := range bitsGrid {
		for bi, bs := range blockGrid {
			// sample the rsi and flag axes to keep the grid tractable
			// while every value is still exercised
			rsi := rsiGrid[(int(bits)+bi)%len(rsiGrid)]

			for _, signed := range []bool{false, true} {
				for _, preprocess := range []bool{false, true} {
					for _, msb := range []bool{false, true} {
						flags := 0

						if signed {
							flags |= aec.DATA_SIGNED
						}

						if preprocess {
							flags |= aec.DATA_PREPROCESS
						}

						if msb {
							flags |= aec.DATA_MSB
						}

						if bits == 24 && bi%2 == 1 {
							flags |= aec.DATA_3BYTE
						}

						pattern := patterns[nbConfigs%len(patterns)]
						nbConfigs++

						if err := testRoundTrip(r, pattern, bits, bs, rsi, flags); err != nil {
							t.Errorf("bits=%d block=%d rsi=%d flags=%d pattern=%s: %v",
								bits, bs, rsi, flags, pattern, err)
						}
					}
				}
			}
		}
	}
}

func TestRoundTripRestricted(t *testing.T) {
	r := rand.New(rand.NewSource(2))

	for _, bits := range []uint{1, 2, 3, 4} {
		for _, pattern := range []string{"zeros", "random"} {
			flags := aec.RESTRICTED

			if err := testRoundTrip(r, pattern, bits, 8, 4, flags); err != nil {
				t.Errorf("restricted bits=%d pattern=%s: %v", bits, pattern, err)
			}
		}
	}
}

func TestRoundTripPadRSI(t *testing.T) {
	r := rand.New(rand.NewSource(3))

	for _, pattern := range []string{"zeros", "smooth", "random"} {
		flags := aec.PAD_RSI | aec.DATA_PREPROCESS

		if err := testRoundTrip(r, pattern, 12, 16, 4, flags); err != nil {
			t.Errorf("pad rsi pattern=%s: %v", pattern, err)
		}
	}
}

func testRoundTrip(r *rand.Rand, pattern string, bits, bs, rsi uint, flags int) error {
	probe := Stream{BitsPerSample: bits, BlockSize: bs, RSI: rsi, Flags: flags}
	enc, err := NewAdaptiveEncoder(&probe)

	if err != nil {
		return err
	}

	bytesPerSample := enc.BytesPerSample()
	enc.Dispose()

	// two whole intervals plus a partial block to exercise the final
	// flush padding
	nbSamples := 2*int(rsi)*int(bs) + int(bs)/2
	raw := generate(r, pattern, nbSamples, bits, flags&aec.DATA_SIGNED != 0, bytesPerSample,
		flags&aec.DATA_MSB != 0)

	cds, err := encode(raw, bits, bs, rsi, flags)

	if err != nil {
		return err
	}

	got, err := decode(cds, len(raw), bits, bs, rsi, flags)

	if err != nil {
		return err
	}

	if bytes.Equal(got, raw) == false {
		return fmt.Errorf("decoded output differs from input (%d samples, %d coded bytes)",
			nbSamples, len(cds))
	}

	return nil
}

func TestResumability(t *testing.T) {
	r := rand.New(rand.NewSource(4))

	for _, pattern := range []string{"zeros", "smooth", "random"} {
		raw := generate(r, pattern, 100, 8, false, 1, false)
		want, err := encode(raw, 8, 8, 2, aec.DATA_PREPROCESS)

		if err != nil {
			t.Fatalf("one shot: %v", err)
		}

		got, err := encodeByteAtATime(raw, 8, 8, 2, aec.DATA_PREPROCESS)

		if err != nil {
			t.Fatalf("resumable: %v", err)
		}

		if bytes.Equal(got, want) == false {
			t.Errorf("pattern=%s: resumable output % X differs from one shot % X", pattern, got, want)
		}
	}
}

// encodeByteAtATime drives the same encoder with one byte of input and
// one byte of output space per call
func encodeByteAtATime(raw []byte, bits, bs, rsi uint, flags int) ([]byte, error) {
	strm := Stream{BitsPerSample: bits, BlockSize: bs, RSI: rsi, Flags: flags}
	enc, err := NewAdaptiveEncoder(&strm)

	if err != nil {
		return nil, err
	}

	out := make([]byte, 0)
	obuf := make([]byte, 1)

	for i := 0; i < len(raw); i++ {
		strm.NextIn = raw[i : i+1]

		for len(strm.NextIn) > 0 {
			strm.NextOut = obuf[:]

			if err := enc.Encode(aec.NO_FLUSH); err != nil {
				return nil, err
			}

			out = append(out, obuf[:1-len(strm.NextOut)]...)
		}
	}

	for enc.Flushed() == false {
		strm.NextOut = obuf[:]

		if err := enc.Encode(aec.FLUSH); err != nil {
			return nil, err
		}

		out = append(out, obuf[:1-len(strm.NextOut)]...)
	}

	if err := enc.Dispose(); err != nil {
		return nil, err
	}

	return out, nil
}

func TestAssessedLengthMatchesEmission(t *testing.T) {
	r := rand.New(rand.NewSource(5))

	for i := 0; i < 200; i++ {
		bits := []uint{4, 8, 12, 16, 32}[i%5]
		bs := []uint{8, 16, 32, 64}[i%4]
		strm := Stream{BitsPerSample: bits, BlockSize: bs, RSI: 1}
		enc, err := NewAdaptiveEncoder(&strm)

		if err != nil {
			t.Fatalf("init: %v", err)
		}

		// small values keep the second extension viable now and then
		shift := uint(r.Intn(int(bits)))

		for j := range enc.block {
			enc.block[j] = uint32(r.Int63()) & ((uint32(1) << bits) - 1) >> shift
		}

		// larger than the real bound: the test emits the splitting
		// option even when the encoder would have picked uncompressed
		buf := make([]byte, 8*_CDS_LEN)
		splitLen := enc.assessSplittingOption()
		enc.bw.Reset(buf)
		enc.encodeSplitting()
		written := writtenBits(enc.bw)

		if written != uint64(enc.cfg.idLen)+uint64(splitLen) {
			t.Errorf("splitting bits=%d block=%d: emitted %d bits, assessed %d + %d id bits",
				bits, bs, written, splitLen, enc.cfg.idLen)
		}

		seLen := enc.assessSEOption()

		if seLen != uint32(0xFFFFFFFF) {
			// a viable second extension may still be far longer than the
			// uncompressed block: size the buffer for the assessed length
			if need := int(seLen/8) + 16; need > len(buf) {
				buf = make([]byte, need)
			}

			enc.bw.Reset(buf)
			enc.encodeSE()
			written = writtenBits(enc.bw)

			if written != uint64(enc.cfg.idLen)+uint64(seLen) {
				t.Errorf("second extension bits=%d block=%d: emitted %d bits, assessed %d + %d id bits",
					bits, bs, written, seLen, enc.cfg.idLen)
			}
		}

		enc.Dispose()
	}
}

func writtenBits(bw *bitstream.CDSWriter) uint64 {
	return uint64(bw.Pos())*8 + uint64(8-bw.Bits())
}

func TestSplittingSearchIsOptimal(t *testing.T) {
	r := rand.New(rand.NewSource(6))

	for i := 0; i < 500; i++ {
		strm := Stream{BitsPerSample: 16, BlockSize: 16, RSI: 1}
		enc, _ := NewAdaptiveEncoder(&strm)
		shift := uint(r.Intn(16))

		for j := range enc.block {
			enc.block[j] = uint32(r.Int63()) & 0xFFFF >> shift
		}

		enc.k = r.Intn(enc.cfg.kmax + 1)
		got := uint64(enc.assessSplittingOption())

		// exhaustive reference over all admissible k
		best := uint64(1) << 62

		for k := 0; k <= enc.cfg.kmax; k++ {
			length := enc.blockFS(k) + uint64(enc.cfg.blockSize)*uint64(k+1)

			if length < best {
				best = length
			}
		}

		if got != best {
			t.Errorf("seed k=%d: search found %d bits, exhaustive minimum is %d", enc.k, got, best)
		}

		enc.Dispose()
	}
}

func TestResidualRange(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for _, signed := range []bool{false, true} {
		flags := aec.DATA_PREPROCESS

		if signed {
			flags |= aec.DATA_SIGNED
		}

		strm := Stream{BitsPerSample: 10, BlockSize: 8, RSI: 4, Flags: flags}
		enc, err := NewAdaptiveEncoder(&strm)

		if err != nil {
			t.Fatalf("init: %v", err)
		}

		for i := range enc.dataRaw {
			enc.dataRaw[i] = uint32(r.Intn(1024))
		}

		enc.preprocessRSI()
		limit := uint32(enc.cfg.xmax - enc.cfg.xmin)

		for i, d := range enc.dataPP[1:] {
			if d > limit {
				t.Errorf("signed=%v: residual %d at %d exceeds %d", signed, d, i+1, limit)
			}
		}

		enc.Dispose()
	}
}

func TestConfigErrors(t *testing.T) {
	bad := []Stream{
		{BitsPerSample: 0, BlockSize: 8, RSI: 1},
		{BitsPerSample: 33, BlockSize: 8, RSI: 1},
		{BitsPerSample: 8, BlockSize: 12, RSI: 1},
		{BitsPerSample: 8, BlockSize: 8, RSI: 0},
		{BitsPerSample: 8, BlockSize: 8, RSI: 5000},
		{BitsPerSample: 8, BlockSize: 8, RSI: 1, Flags: aec.RESTRICTED},
	}

	for i := range bad {
		if _, err := NewAdaptiveEncoder(&bad[i]); err == nil {
			t.Errorf("config %d: expected a configuration error", i)
		} else if ce, ok := err.(*Error); !ok || ce.ErrorCode() != aec.ERR_CONF {
			t.Errorf("config %d: expected code %d, got %v", i, aec.ERR_CONF, err)
		}
	}
}

func TestIncompleteFlushIsStreamError(t *testing.T) {
	strm := Stream{
		NextIn:        bytes.Repeat([]byte{0xAB}, 64),
		NextOut:       make([]byte, 2), // far too small
		BitsPerSample: 8,
		BlockSize:     8,
		RSI:           1,
	}

	enc, err := NewAdaptiveEncoder(&strm)

	if err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := enc.Encode(aec.FLUSH); err != nil {
		t.Fatalf("encode: %v", err)
	}

	err = enc.Dispose()

	if err == nil {
		t.Fatal("expected a stream error")
	}

	if ce, ok := err.(*Error); !ok || ce.ErrorCode() != aec.ERR_STREAM {
		t.Errorf("expected code %d, got %v", aec.ERR_STREAM, err)
	}
}

func TestDecodeTruncatedStream(t *testing.T) {
	raw := bytes.Repeat([]byte{0x55, 0xAA}, 64)
	cds, err := encode(raw, 8, 8, 2, aec.DATA_PREPROCESS)

	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	_, err = decode(cds[:len(cds)/2], len(raw), 8, 8, 2, aec.DATA_PREPROCESS)

	if err == nil {
		t.Fatal("expected a data error")
	}

	if ce, ok := err.(*Error); !ok || ce.ErrorCode() != aec.ERR_DATA {
		t.Errorf("expected code %d, got %v", aec.ERR_DATA, err)
	}
}
