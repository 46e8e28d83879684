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

// The unit delay predictor of CCSDS 121.0-B-2 maps each prediction
// error x_i - x_i-1 to a non negative residual in [0, xmax - xmin]
// while keeping the mapping invertible: small positive errors map to
// even values, small negative errors to odd values, and errors beyond
// the distance of the predictor to the nearer range bound map to the
// remaining high values. The first sample of every reference sample
// interval is kept literal.

// preprocessRSI maps one reference sample interval of raw samples to
// residuals and arms the reference sample bookkeeping
func (this *AdaptiveEncoder) preprocessRSI() {
	if this.cfg.signed {
		this.preprocessSigned()
	} else {
		this.preprocessUnsigned()
	}

	this.ref = 1
	this.uncompLen = uint32(this.cfg.blockSize-1) * uint32(this.cfg.bitsPerSample)
}

func (this *AdaptiveEncoder) preprocessUnsigned() {
	x := this.dataRaw
	d := this.dataPP
	xmax := uint32(this.cfg.xmax)
	n := this.cfg.rsi * this.cfg.blockSize

	d[0] = x[0]

	for i := 0; i < n-1; i++ {
		if x[i+1] >= x[i] {
			D := x[i+1] - x[i]

			if D <= x[i] {
				d[i+1] = 2 * D
			} else {
				d[i+1] = x[i+1]
			}
		} else {
			D := x[i] - x[i+1]

			if D <= xmax-x[i] {
				d[i+1] = 2*D - 1
			} else {
				d[i+1] = xmax - x[i+1]
			}
		}
	}
}

func (this *AdaptiveEncoder) preprocessSigned() {
	x := this.dataRaw
	d := this.dataPP
	m := uint32(1) << (this.cfg.bitsPerSample - 1)
	xmax := this.cfg.xmax
	xmin := this.cfg.xmin
	n := this.cfg.rsi * this.cfg.blockSize

	// the reference sample keeps its raw bit pattern, prediction runs
	// on the sign extended values
	d[0] = x[0]
	prev := int64(int32((x[0] ^ m) - m))

	for i := 0; i < n-1; i++ {
		cur := int64(int32((x[i+1] ^ m) - m))

		if cur < prev {
			D := prev - cur

			if D <= xmax-prev {
				d[i+1] = uint32(2*D - 1)
			} else {
				d[i+1] = uint32(xmax - cur)
			}
		} else {
			D := cur - prev

			if D <= prev-xmin {
				d[i+1] = uint32(2 * D)
			} else {
				d[i+1] = uint32(cur - xmin)
			}
		}

		prev = cur
	}
}

// postprocessRSI inverts the mapping over the residuals decoded for
// one reference sample interval, leaving the raw sample bit patterns
// in place
func (this *AdaptiveDecoder) postprocessRSI(d []uint32) {
	if this.cfg.signed {
		this.postprocessSigned(d)
	} else {
		this.postprocessUnsigned(d)
	}
}

func (this *AdaptiveDecoder) postprocessUnsigned(d []uint32) {
	xmax := uint64(this.cfg.xmax)
	x := uint64(d[0])

	for i := 1; i < len(d); i++ {
		db := uint64(d[i])
		theta := x

		if xmax-x < theta {
			theta = xmax - x
		}

		if db > 2*theta {
			if theta == x {
				x = db
			} else {
				x = xmax - db
			}
		} else if db&1 != 0 {
			x -= (db + 1) / 2
		} else {
			x += db / 2
		}

		d[i] = uint32(x)
	}
}

func (this *AdaptiveDecoder) postprocessSigned(d []uint32) {
	m := uint32(1) << (this.cfg.bitsPerSample - 1)
	xmax := this.cfg.xmax
	xmin := this.cfg.xmin
	x := int64(int32((d[0] ^ m) - m))

	for i := 1; i < len(d); i++ {
		db := int64(d[i])
		theta := x - xmin

		if xmax-x < theta {
			theta = xmax - x
		}

		if db > 2*theta {
			if theta == x-xmin {
				x = xmin + db
			} else {
				x = xmax - db
			}
		} else if db&1 != 0 {
			x -= (db + 1) / 2
		} else {
			x += db / 2
		}

		d[i] = uint32(x)
	}
}
