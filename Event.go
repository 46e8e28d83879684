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

package aec

import (
	"fmt"
	"time"
)

const (
	EVT_ENCODING_START = 0 // Encoding starts
	EVT_ENCODING_END   = 1 // Encoding ends
	EVT_DECODING_START = 2 // Decoding starts
	EVT_DECODING_END   = 3 // Decoding ends
	EVT_AFTER_SEGMENT  = 4 // One segment has been encoded or decoded
	EVT_AFTER_HEADER   = 5 // Stream header decoding ends
)

// Event an encoding/decoding event
type Event struct {
	eventType int
	id        int
	size      int64
	hash      uint64
	hashed    bool
	eventTime time.Time
	msg       string
}

// NewEventFromString creates a new Event instance that wraps a message
func NewEventFromString(evtType, id int, msg string, evtTime time.Time) *Event {
	if evtTime.IsZero() {
		evtTime = time.Now()
	}

	return &Event{eventType: evtType, id: id, size: 0, msg: msg, eventTime: evtTime}
}

// NewEvent creates a new Event instance with size and hash info
func NewEvent(evtType, id int, size int64, hash uint64, hashed bool, evtTime time.Time) *Event {
	if evtTime.IsZero() {
		evtTime = time.Now()
	}

	return &Event{eventType: evtType, id: id, size: size, hash: hash,
		hashed: hashed, eventTime: evtTime}
}

// Type returns the type info
func (this *Event) Type() int {
	return this.eventType
}

// ID returns the id info
func (this *Event) ID() int {
	return this.id
}

// Time returns the time info
func (this *Event) Time() time.Time {
	return this.eventTime
}

// Size returns the size info
func (this *Event) Size() int64 {
	return this.size
}

// Hash returns the hash info
func (this *Event) Hash() uint64 {
	return this.hash
}

// Hashed returns true when the event carries a content hash
func (this *Event) Hashed() bool {
	return this.hashed
}

// String returns a string representation of this event.
// If the event wraps a message, the message is returned.
func (this *Event) String() string {
	if len(this.msg) > 0 {
		return this.msg
	}

	hash := ""
	t := ""
	id := ""

	if this.hashed == true {
		hash = fmt.Sprintf(", \"hash\": %x", this.hash)
	}

	if this.id >= 0 {
		id = fmt.Sprintf(", \"id\": %d", this.id)
	}

	switch this.eventType {
	case EVT_ENCODING_START:
		t = "ENCODING_START"

	case EVT_ENCODING_END:
		t = "ENCODING_END"

	case EVT_DECODING_START:
		t = "DECODING_START"

	case EVT_DECODING_END:
		t = "DECODING_END"

	case EVT_AFTER_SEGMENT:
		t = "AFTER_SEGMENT"

	case EVT_AFTER_HEADER:
		t = "AFTER_HEADER"
	}

	return fmt.Sprintf("{ \"type\":\"%s\"%s, \"size\":%d, \"time\":%d%s }", t, id, this.size,
		this.eventTime.UnixNano()/1000000, hash)
}

// Listener is an interface implemented by event processors
type Listener interface {
	// ProcessEvent is the method called whenever a Listener receives an event.
	ProcessEvent(evt *Event)
}
