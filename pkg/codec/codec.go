// Package codec converts between socket payloads and text.
package codec

import (
	"errors"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder decodes a UTF-8 byte stream chunk by chunk. A multi-byte
// character split across chunks is held back until its remaining bytes
// arrive. Invalid sequences decode to U+FFFD.
type Decoder struct {
	t       transform.Transformer
	pending []byte
}

// NewDecoder returns a decoder with no buffered state.
func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode returns the text of all complete characters seen so far that
// were not returned before.
func (d *Decoder) Decode(chunk []byte) string {
	src := append(d.pending, chunk...)
	out, n := d.transform(src, false)
	d.pending = append([]byte(nil), src[n:]...)
	return out
}

// Flush ends the stream and returns whatever is still buffered.
func (d *Decoder) Flush() string {
	out, _ := d.transform(d.pending, true)
	d.pending = nil
	d.t.Reset()
	return out
}

func (d *Decoder) transform(src []byte, atEOF bool) (string, int) {
	var out []byte
	dst := make([]byte, 4*len(src)+4)
	consumed := 0

	for {
		nDst, nSrc, err := d.t.Transform(dst, src[consumed:], atEOF)
		out = append(out, dst[:nDst]...)
		consumed += nSrc

		switch {
		case errors.Is(err, transform.ErrShortDst):
			continue
		default:
			// nil, or ErrShortSrc with an incomplete trailing character
			return string(out), consumed
		}
	}
}

// Encoder encodes text for sending.
type Encoder struct {
	e *encoding.Encoder
}

// NewEncoder returns a UTF-8 encoder.
func NewEncoder() *Encoder {
	return &Encoder{e: unicode.UTF8.NewEncoder()}
}

// Encode returns the UTF-8 bytes of text. Invalid UTF-8 in text is
// replaced by U+FFFD.
func (e *Encoder) Encode(text string) []byte {
	b, err := e.e.Bytes([]byte(text))
	if err != nil {
		return []byte(text)
	}
	return b
}
