package search

import (
	"bytes"
	"context"
	"io"
	"unicode/utf8"
)

const textCheckBufferSize = 32 * 1024

// isText reads r to the end and reports whether all of it is valid UTF-8. A rune split across
// two reads is carried over and checked whole.
func isText(ctx context.Context, r io.Reader) (bool, error) {
	buf := make([]byte, textCheckBufferSize)
	carry := 0

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		n, err := r.Read(buf[carry:])
		data := buf[:carry+n]
		if err == io.EOF {
			return utf8.Valid(data), nil
		}
		if err != nil {
			return false, err
		}

		cut := len(data) - incompleteRuneSuffix(data)
		if !utf8.Valid(data[:cut]) {
			return false, nil
		}
		carry = copy(buf, data[cut:])
	}
}

// incompleteRuneSuffix returns how many trailing bytes of data start a rune that is not yet
// complete.
func incompleteRuneSuffix(data []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		start := len(data) - i
		if !utf8.RuneStart(data[start]) {
			continue
		}
		if utf8.FullRune(data[start:]) {
			return 0
		}
		return i
	}

	return 0
}

// splitLines breaks a chunk ending in '\n' (or at end of file) into lines. "\n", "\r\n" and a
// lone "\r" all end a line, and the terminators are dropped.
func splitLines(chunk []byte) [][]byte {
	if len(chunk) == 0 {
		return nil
	}

	chunk = bytes.TrimSuffix(chunk, []byte("\n"))
	chunk = bytes.TrimSuffix(chunk, []byte("\r"))

	return bytes.Split(chunk, []byte("\r"))
}
