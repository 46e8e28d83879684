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
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	aec "github.com/telemetric/aec-go"
	aecio "github.com/telemetric/aec-go/io"
)

const (
	_AEC_VERSION = "1.0"
	_APP_HEADER  = "gaec " + _AEC_VERSION + " - CCSDS 121.0-B-2 adaptive entropy coder"

	_ARG_INPUT      = "--input="
	_ARG_OUTPUT     = "--output="
	_ARG_BITS       = "--bits="
	_ARG_BLOCK      = "--block="
	_ARG_RSI        = "--rsi="
	_ARG_VERBOSE    = "--verbose="
	_ARG_COMPRESS   = "--compress"
	_ARG_DECOMPRESS = "--decompress"
	_ARG_SIGNED     = "--signed"
	_ARG_MSB        = "--msb"
	_ARG_3BYTE      = "--3byte"
	_ARG_PREPROCESS = "--preprocess"
	_ARG_RESTRICTED = "--restricted"
	_ARG_PAD_RSI    = "--pad-rsi"
	_ARG_CHECKSUM   = "--checksum"
	_ARG_FORCE      = "--force"
	_ARG_HELP       = "--help"
)

var log = Printer{os: bufio.NewWriter(os.Stdout)}

type args struct {
	mode          string
	inputName     string
	outputName    string
	bitsPerSample uint
	blockSize     uint
	rsi           uint
	flags         int
	checksum      bool
	force         bool
	verbosity     uint
}

func main() {
	os.Exit(run(os.Args))
}

func run(cmdLine []string) int {
	parsed, status := processCommandLine(cmdLine)

	if parsed == nil {
		return status
	}

	if parsed.mode == "d" {
		return decompress(parsed)
	}

	return compress(parsed)
}

func printUsage() {
	log.Println(_APP_HEADER+"\n", true)
	log.Println("Usage: gaec [--compress|--decompress] [options] --input=<file> --output=<file>\n", true)
	log.Println("Options:", true)
	log.Println("   --compress | -c      compress the input file (default)", true)
	log.Println("   --decompress | -d    decompress the input file", true)
	log.Println("   --input=<file>       input file name", true)
	log.Println("   --output=<file>      output file name", true)
	log.Println("   --bits=<n>           bits per sample in [1..32] (default 8)", true)
	log.Println("   --block=<n>          samples per block: 8, 16, 32 or 64 (default 8)", true)
	log.Println("   --rsi=<n>            blocks per reference sample interval (default 128)", true)
	log.Println("   --signed             samples are two's complement signed", true)
	log.Println("   --msb                samples are stored most significant byte first", true)
	log.Println("   --3byte              17..24 bit samples are packed into 3 bytes", true)
	log.Println("   --preprocess         map samples to residuals before coding", true)
	log.Println("   --restricted         restricted code options (at most 4 bits per sample)", true)
	log.Println("   --pad-rsi            byte align each reference sample interval", true)
	log.Println("   --checksum           add a content checksum to every segment", true)
	log.Println("   --force              overwrite the output file if it exists", true)
	log.Println("   --verbose=<n>        0=silent, 1=default, 2=events, 3=segments", true)
}

func processCommandLine(cmdLine []string) (*args, int) {
	this := &args{mode: "c", bitsPerSample: 8, blockSize: 8, rsi: 128, verbosity: 1}

	for _, arg := range cmdLine[1:] {
		arg = strings.TrimSpace(arg)

		switch {
		case arg == _ARG_HELP || arg == "-h":
			printUsage()
			return nil, 0

		case arg == _ARG_COMPRESS || arg == "-c":
			this.mode = "c"

		case arg == _ARG_DECOMPRESS || arg == "-d":
			this.mode = "d"

		case arg == _ARG_SIGNED:
			this.flags |= aec.DATA_SIGNED

		case arg == _ARG_MSB:
			this.flags |= aec.DATA_MSB

		case arg == _ARG_3BYTE:
			this.flags |= aec.DATA_3BYTE

		case arg == _ARG_PREPROCESS:
			this.flags |= aec.DATA_PREPROCESS

		case arg == _ARG_RESTRICTED:
			this.flags |= aec.RESTRICTED

		case arg == _ARG_PAD_RSI:
			this.flags |= aec.PAD_RSI

		case arg == _ARG_CHECKSUM:
			this.checksum = true

		case arg == _ARG_FORCE || arg == "-f":
			this.force = true

		case strings.HasPrefix(arg, _ARG_INPUT):
			this.inputName = strings.TrimPrefix(arg, _ARG_INPUT)

		case strings.HasPrefix(arg, _ARG_OUTPUT):
			this.outputName = strings.TrimPrefix(arg, _ARG_OUTPUT)

		case strings.HasPrefix(arg, _ARG_BITS):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, _ARG_BITS))

			if err != nil || n < 1 || n > 32 {
				log.Println("Invalid bits per sample: "+arg, true)
				return nil, aec.ERR_CONF
			}

			this.bitsPerSample = uint(n)

		case strings.HasPrefix(arg, _ARG_BLOCK):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, _ARG_BLOCK))

			if err != nil {
				log.Println("Invalid block size: "+arg, true)
				return nil, aec.ERR_CONF
			}

			this.blockSize = uint(n)

		case strings.HasPrefix(arg, _ARG_RSI):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, _ARG_RSI))

			if err != nil || n < 1 || n > aec.MAX_RSI {
				log.Println("Invalid reference sample interval: "+arg, true)
				return nil, aec.ERR_CONF
			}

			this.rsi = uint(n)

		case strings.HasPrefix(arg, _ARG_VERBOSE):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, _ARG_VERBOSE))

			if err != nil || n < 0 {
				log.Println("Invalid verbosity level: "+arg, true)
				return nil, aec.ERR_CONF
			}

			this.verbosity = uint(n)

		default:
			log.Println("Unknown option: "+arg, true)
			return nil, aec.ERR_CONF
		}
	}

	if this.inputName == "" || this.outputName == "" {
		log.Println("Missing input or output file name: try --help or -h", true)
		return nil, aec.ERR_CONF
	}

	return this, 0
}

func openFiles(this *args) (*os.File, *os.File, int) {
	input, err := os.Open(this.inputName)

	if err != nil {
		log.Println(fmt.Sprintf("Cannot open input file '%s': %v", this.inputName, err), true)
		return nil, nil, aec.ERR_IO
	}

	if this.force == false {
		if _, err := os.Stat(this.outputName); err == nil {
			log.Println(fmt.Sprintf("The output file '%s' exists (use --force to overwrite)",
				this.outputName), true)
			input.Close()
			return nil, nil, aec.ERR_IO
		}
	}

	output, err := os.Create(this.outputName)

	if err != nil {
		log.Println(fmt.Sprintf("Cannot create output file '%s': %v", this.outputName, err), true)
		input.Close()
		return nil, nil, aec.ERR_IO
	}

	return input, output, 0
}

func compress(this *args) int {
	log.Println(_APP_HEADER, this.verbosity >= 1)
	input, output, status := openFiles(this)

	if status != 0 {
		return status
	}

	defer input.Close()

	w, err := aecio.NewWriter(output, this.bitsPerSample, this.blockSize, this.rsi,
		this.flags, this.checksum)

	if err != nil {
		log.Println(err.Error(), true)
		output.Close()
		return errorCode(err)
	}

	if this.verbosity >= 2 {
		if ip, err := NewInfoPrinter(this.verbosity, &log); err == nil {
			w.AddListener(ip)
		}
	}

	before := time.Now()
	read, err := io.Copy(w, bufio.NewReader(input))

	if err == nil {
		err = w.Close()
	}

	if err != nil {
		log.Println(err.Error(), true)
		return errorCode(err)
	}

	delta := time.Since(before).Milliseconds()
	written := w.GetWritten()
	msg := fmt.Sprintf("Encoded %d bytes to %d bytes in %d ms", read, written, delta)

	if read > 0 {
		msg += fmt.Sprintf(" (ratio %.3f)", float64(written)/float64(read))
	}

	log.Println(msg, this.verbosity >= 1)
	return 0
}

func decompress(this *args) int {
	log.Println(_APP_HEADER, this.verbosity >= 1)
	input, output, status := openFiles(this)

	if status != 0 {
		return status
	}

	defer output.Close()

	r, err := aecio.NewReader(input)

	if err != nil {
		log.Println(err.Error(), true)
		input.Close()
		return errorCode(err)
	}

	if this.verbosity >= 2 {
		if ip, err := NewInfoPrinter(this.verbosity, &log); err == nil {
			r.AddListener(ip)
		}
	}

	before := time.Now()
	out := bufio.NewWriter(output)
	written, err := io.Copy(out, r)

	if err == nil {
		err = out.Flush()
	}

	if err == nil {
		err = r.Close()
	}

	if err != nil {
		log.Println(err.Error(), true)
		return errorCode(err)
	}

	delta := time.Since(before).Milliseconds()
	log.Println(fmt.Sprintf("Decoded %d bytes to %d bytes in %d ms",
		r.GetRead(), written, delta), this.verbosity >= 1)
	return 0
}

// errorCode extracts the aec error code from a codec error, falling
// back to the generic IO code
func errorCode(err error) int {
	type coded interface {
		ErrorCode() int
	}

	if ce, ok := err.(coded); ok {
		return ce.ErrorCode()
	}

	return aec.ERR_IO
}
