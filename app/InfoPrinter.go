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

package main

import (
	"bufio"
	"fmt"
	"sync"

	aec "github.com/telemetric/aec-go"
)

// Printer is a concurrent safe buffered printer
type Printer struct {
	os    *bufio.Writer
	mutex sync.Mutex
}

// Println prints a message and flushes when print is true
func (this *Printer) Println(msg string, print bool) {
	if print == false {
		return
	}

	this.mutex.Lock()
	fmt.Fprintln(this.os, msg)
	this.os.Flush()
	this.mutex.Unlock()
}

// InfoPrinter is an event listener that prints stream progress
type InfoPrinter struct {
	writer *Printer
	level  uint
}

// NewInfoPrinter creates a new instance of InfoPrinter
func NewInfoPrinter(level uint, writer *Printer) (*InfoPrinter, error) {
	if writer == nil {
		return nil, fmt.Errorf("invalid null writer parameter")
	}

	this := &InfoPrinter{}
	this.writer = writer
	this.level = level
	return this, nil
}

// ProcessEvent receives an event and prints it
func (this *InfoPrinter) ProcessEvent(evt *aec.Event) {
	if evt.Type() == aec.EVT_AFTER_SEGMENT && this.level < 3 {
		return
	}

	this.writer.Println(evt.String(), this.level >= 2)
}
