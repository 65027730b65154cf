package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/schemeportal/internal/encoding"
)

const header = "District Code,Block Code,Panchayat Name,Panchayat Code\n"

func decodeAll(t *testing.T, input []byte) (string, string) {
	t.Helper()

	r, charset, err := encoding.Decode(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestDecode_UTF8Passthrough(t *testing.T) {
	input := header + "D1,B1,Pāli,PCH01\n"

	got, charset := decodeAll(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, "UTF-8", charset)
}

func TestDecode_StripsUTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, header...)

	got, charset := decodeAll(t, input)
	assert.Equal(t, header, got)
	assert.Equal(t, "UTF-8", charset)
}

func TestDecode_UTF16WithBOM(t *testing.T) {
	tests := []struct {
		name    string
		endian  unicode.Endianness
		charset string
	}{
		{name: "little endian", endian: unicode.LittleEndian, charset: "UTF-16LE"},
		{name: "big endian", endian: unicode.BigEndian, charset: "UTF-16BE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := unicode.UTF16(tt.endian, unicode.UseBOM).NewEncoder().String(header)
			require.NoError(t, err)

			got, charset := decodeAll(t, []byte(encoded))
			assert.Equal(t, header, got)
			assert.Equal(t, tt.charset, charset)
		})
	}
}

func TestDecode_Windows1252(t *testing.T) {
	want := header + "D1,B1,Café Nagar,PCH01\n"

	encoded, err := charmap.Windows1252.NewEncoder().String(want)
	require.NoError(t, err)

	got, _ := decodeAll(t, []byte(encoded))
	assert.Equal(t, want, got)
}

func TestDecode_LongUTF8Input(t *testing.T) {
	// The sniff window ends in the middle of a multi-byte rune.
	input := strings.Repeat("a", 8191) + "ā" + "\n"

	got, charset := decodeAll(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, "UTF-8", charset)
}

func TestDecode_Empty(t *testing.T) {
	got, _ := decodeAll(t, nil)
	assert.Empty(t, got)
}
