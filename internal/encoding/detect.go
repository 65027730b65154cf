// Package encoding normalizes uploaded spreadsheets to UTF-8. District
// offices export location lists from a mix of Excel versions, so the same
// header can arrive as UTF-8, UTF-16 or a Windows code page.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffSize is how much of the input is inspected before decoding starts.
const sniffSize = 8192

// Fallback is used when neither a BOM nor the detector gives an answer.
const Fallback = "windows-1252"

var boms = []struct {
	mark    []byte
	charset string
	enc     xenc.Encoding
}{
	{mark: []byte{0xEF, 0xBB, 0xBF}, charset: "UTF-8"},
	{mark: []byte{0xFF, 0xFE}, charset: "UTF-16LE", enc: unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)},
	{mark: []byte{0xFE, 0xFF}, charset: "UTF-16BE", enc: unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)},
}

// decoders maps chardet charset names to the encodings we accept.
var decoders = map[string]xenc.Encoding{
	"UTF-16LE":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"UTF-16BE":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
	"ISO-8859-15":  charmap.ISO8859_15,
}

// Decode sniffs r and returns a reader yielding UTF-8 together with the
// charset it settled on. A UTF-8 BOM is dropped.
func Decode(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("sniffing input: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(head, b.mark) {
			continue
		}

		if b.enc == nil {
			_, _ = br.Discard(len(b.mark))
			return br, b.charset, nil
		}

		return transform.NewReader(br, b.enc.NewDecoder()), b.charset, nil
	}

	if validUTF8Prefix(head) {
		return br, "UTF-8", nil
	}

	charset := detect(head)
	if charset == "UTF-8" {
		return br, charset, nil
	}

	enc, ok := decoders[charset]
	if !ok {
		charset, enc = Fallback, charmap.Windows1252
	}

	return transform.NewReader(br, enc.NewDecoder()), charset, nil
}

// NewUTF8Reader is Decode without the charset.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	out, _, err := Decode(r)
	return out, err
}

func detect(head []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(head)
	if err != nil {
		return ""
	}

	return result.Charset
}

// validUTF8Prefix ignores a multi-byte rune cut off at the end of the sniff
// window.
func validUTF8Prefix(b []byte) bool {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}

		if len(b) < sniffSize {
			return false
		}

		b = b[:len(b)-1]
	}

	return utf8.Valid(b)
}
