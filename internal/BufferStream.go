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

// Package internal provides small helpers used by the tests.
package internal

import (
	"bytes"
	"errors"
)

// BufferStream is a closable read/write stream of bytes backed by a
// bytes.Buffer. It stands in for a file in tests and in-memory
// pipelines.
type BufferStream struct {
	buf    *bytes.Buffer
	closed bool
}

// NewBufferStream creates a new instance of BufferStream, optionally
// seeded with initial contents
func NewBufferStream(args ...[]byte) *BufferStream {
	this := &BufferStream{}

	if len(args) == 1 {
		this.buf = bytes.NewBuffer(args[0])
	} else {
		this.buf = bytes.NewBuffer(make([]byte, 0))
	}

	return this
}

// Write appends the given data to the internal buffer, growing it as
// needed. Returns an error if the stream is closed.
func (this *BufferStream) Write(b []byte) (int, error) {
	if this.closed == true {
		return 0, errors.New("Stream closed")
	}

	return this.buf.Write(b)
}

// Read reads data from the internal buffer at the read offset
// position. Returns an error if the stream is closed.
func (this *BufferStream) Read(b []byte) (int, error) {
	if this.closed == true {
		return 0, errors.New("Stream closed")
	}

	return this.buf.Read(b)
}

// Close makes the stream unavailable for future reads or writes.
func (this *BufferStream) Close() error {
	this.closed = true
	return nil
}

// Len returns the number of bytes available for read
func (this *BufferStream) Len() int {
	return this.buf.Len()
}

// Bytes returns the unread contents of the stream
func (this *BufferStream) Bytes() []byte {
	return this.buf.Bytes()
}
