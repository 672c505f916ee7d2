package core

import (
	"io"
	"strings"
)

// encoding/csv hard-codes '"' as the quote character. A custom quote byte is
// honored by swapping it with '"' in the raw stream on either side of the
// CSV codec and swapping back inside each parsed or written field value.
// The swap is its own inverse and both bytes are single ASCII bytes, so it
// cannot split a UTF-8 sequence. No buffering beyond the caller's chunk.

type byteSwapReader struct {
	r    io.Reader
	a, b byte
}

func (s *byteSwapReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	swapBytes(p[:n], s.a, s.b)
	return n, err
}

type byteSwapWriter struct {
	w    io.Writer
	a, b byte
}

func (s *byteSwapWriter) Write(p []byte) (int, error) {
	// Copy first: the csv writer reuses its buffer.
	q := make([]byte, len(p))
	copy(q, p)
	swapBytes(q, s.a, s.b)
	return s.w.Write(q)
}

func swapBytes(p []byte, a, b byte) {
	for i, c := range p {
		switch c {
		case a:
			p[i] = b
		case b:
			p[i] = a
		}
	}
}

func swapString(s string, a, b byte) string {
	if !strings.ContainsAny(s, string([]byte{a, b})) {
		return s
	}
	q := []byte(s)
	swapBytes(q, a, b)
	return string(q)
}

// newQuoteReader adapts a raw CSV stream quoted with the given byte into one
// quoted with '"'. Identity when the quote already is '"'.
func newQuoteReader(r io.Reader, quote byte) io.Reader {
	if quote == '"' {
		return r
	}
	return &byteSwapReader{r: r, a: quote, b: '"'}
}

// newQuoteWriter is the inverse of newQuoteReader for the output stream.
func newQuoteWriter(w io.Writer, quote byte) io.Writer {
	if quote == '"' {
		return w
	}
	return &byteSwapWriter{w: w, a: quote, b: '"'}
}
