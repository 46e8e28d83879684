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

package benchmark

import (
	"math/rand"
	"testing"

	"github.com/klauspost/compress/zstd"

	aec "github.com/telemetric/aec-go"
	"github.com/telemetric/aec-go/entropy"
)

// synthetic 12 bit instrument samples: a slow drift plus shot noise,
// the kind of signal the predictor was designed for
func instrumentData(nbSamples int) []byte {
	r := rand.New(rand.NewSource(42))
	raw := make([]byte, 2*nbSamples)
	level := 2048

	for i := 0; i < nbSamples; i++ {
		level += r.Intn(9) - 4

		if level < 0 {
			level = 0
		} else if level > 4095 {
			level = 4095
		}

		v := level

		if r.Intn(1000) == 0 {
			v = r.Intn(4096)
		}

		raw[2*i] = byte(v >> 8)
		raw[2*i+1] = byte(v)
	}

	return raw
}

func BenchmarkAdaptiveEncode(b *testing.B) {
	raw := instrumentData(1 << 18)
	out := make([]byte, 2*len(raw))
	b.SetBytes(int64(len(raw)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		strm := entropy.Stream{
			NextIn:        raw,
			NextOut:       out,
			BitsPerSample: 12,
			BlockSize:     16,
			RSI:           64,
			Flags:         aec.DATA_PREPROCESS | aec.DATA_MSB,
		}

		if err := entropy.BufferEncode(&strm); err != nil {
			b.Fatalf("encode failed: %v", err)
		}
	}
}

func BenchmarkAdaptiveDecode(b *testing.B) {
	raw := instrumentData(1 << 18)
	out := make([]byte, 2*len(raw))
	strm := entropy.Stream{
		NextIn:        raw,
		NextOut:       out,
		BitsPerSample: 12,
		BlockSize:     16,
		RSI:           64,
		Flags:         aec.DATA_PREPROCESS | aec.DATA_MSB,
	}

	if err := entropy.BufferEncode(&strm); err != nil {
		b.Fatalf("encode failed: %v", err)
	}

	cds := out[:int(strm.TotalOut)]
	b.SetBytes(int64(len(raw)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		dstrm := entropy.Stream{
			NextIn:        cds,
			NextOut:       make([]byte, len(raw)),
			BitsPerSample: 12,
			BlockSize:     16,
			RSI:           64,
			Flags:         aec.DATA_PREPROCESS | aec.DATA_MSB,
		}

		if err := entropy.BufferDecode(&dstrm); err != nil {
			b.Fatalf("decode failed: %v", err)
		}
	}
}

// BenchmarkZstdEncode compresses the same instrument data with zstd as
// the general purpose reference: zstd is usually faster but the
// adaptive coder wins on ratio for narrow sensor residuals
func BenchmarkZstdEncode(b *testing.B) {
	raw := instrumentData(1 << 18)
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))

	if err != nil {
		b.Fatalf("cannot create zstd writer: %v", err)
	}

	defer enc.Close()
	b.SetBytes(int64(len(raw)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = enc.EncodeAll(raw, nil)
	}
}

func BenchmarkCompressionRatio(b *testing.B) {
	raw := instrumentData(1 << 18)
	strm := entropy.Stream{
		NextIn:        raw,
		NextOut:       make([]byte, 2*len(raw)),
		BitsPerSample: 12,
		BlockSize:     16,
		RSI:           64,
		Flags:         aec.DATA_PREPROCESS | aec.DATA_MSB,
	}

	if err := entropy.BufferEncode(&strm); err != nil {
		b.Fatalf("encode failed: %v", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))

	if err != nil {
		b.Fatalf("cannot create zstd writer: %v", err)
	}

	defer enc.Close()
	zout := enc.EncodeAll(raw, nil)
	b.ReportMetric(float64(strm.TotalOut)/float64(len(raw)), "aec-ratio")
	b.ReportMetric(float64(len(zout))/float64(len(raw)), "zstd-ratio")
}
