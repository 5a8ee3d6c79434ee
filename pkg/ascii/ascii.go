// file: pkg/ascii/ascii.go

// Package ascii converts text between OASIS and host line conventions.
//
// OASIS text ends each line with a single CR and marks end of file with
// SUB (0x1A). Host text uses LF, or CRLF on Windows.
package ascii

import (
	"errors"
	"runtime"
)

const (
	// LineEnding terminates every OASIS text line
	LineEnding = '\r'
	// EOF marks the end of an OASIS text file
	EOF = 0x1A
)

var ErrBufferTooSmall = errors.New("output buffer too small")

// Result describes a conversion
type Result struct {
	Written       int // bytes written to the output buffer
	Lines         int // lines produced, counting a trailing partial line
	MaxLineLength int // longest line seen, excluding terminators
}

type lineCounter struct {
	res     Result
	current int
	partial bool
}

func (lc *lineCounter) char() {
	lc.current++
	lc.partial = true
}

func (lc *lineCounter) endLine() {
	lc.res.Lines++
	if lc.current > lc.res.MaxLineLength {
		lc.res.MaxLineLength = lc.current
	}
	lc.current = 0
	lc.partial = false
}

func (lc *lineCounter) finish(written int) Result {
	if lc.partial || lc.current > 0 {
		lc.endLine()
	}
	lc.res.Written = written
	return lc.res
}

// HostLineEnding returns the line terminator of the running platform
func HostLineEnding() []byte {
	if runtime.GOOS == "windows" {
		return []byte{'\r', '\n'}
	}
	return []byte{'\n'}
}

// ToHost converts OASIS text in into host text in out, stopping at the first
// SUB. If out fills up, ErrBufferTooSmall is returned together with what was
// written so far.
func ToHost(in, out []byte) (Result, error) {
	var lc lineCounter
	nl := HostLineEnding()
	n := 0

	for _, c := range in {
		if c == EOF {
			break
		}
		if c == LineEnding {
			if n+len(nl) > len(out) {
				lc.res.Written = n
				return lc.res, ErrBufferTooSmall
			}
			n += copy(out[n:], nl)
			lc.endLine()
			continue
		}
		if n+1 > len(out) {
			lc.res.Written = n
			return lc.res, ErrBufferTooSmall
		}
		out[n] = c
		n++
		lc.char()
	}

	return lc.finish(n), nil
}

// ToOasis converts host text in into OASIS text in out. LF, CRLF and a bare
// CR all become a single CR.
func ToOasis(in, out []byte) (Result, error) {
	var lc lineCounter
	n := 0

	for i := 0; i < len(in); i++ {
		c := in[i]
		if c == '\r' || c == '\n' {
			if c == '\r' && i+1 < len(in) && in[i+1] == '\n' {
				i++
			}
			if n+1 > len(out) {
				lc.res.Written = n
				return lc.res, ErrBufferTooSmall
			}
			out[n] = LineEnding
			n++
			lc.endLine()
			continue
		}
		if n+1 > len(out) {
			lc.res.Written = n
			return lc.res, ErrBufferTooSmall
		}
		out[n] = c
		n++
		lc.char()
	}

	return lc.finish(n), nil
}

// ConvertToHost allocates a buffer large enough for ToHost and returns the converted text
func ConvertToHost(in []byte) ([]byte, Result) {
	out := make([]byte, len(in)*len(HostLineEnding()))
	res, _ := ToHost(in, out)
	return out[:res.Written], res
}

// ConvertToOasis allocates a buffer large enough for ToOasis and returns the converted text
func ConvertToOasis(in []byte) ([]byte, Result) {
	out := make([]byte, len(in))
	res, _ := ToOasis(in, out)
	return out[:res.Written], res
}

// IsASCII reports whether every byte of data is 7-bit
func IsASCII(data []byte) bool {
	for _, b := range data {
		if b&0x80 != 0 {
			return false
		}
	}
	return true
}
