package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDecoder(t *testing.T) {
	tests := []struct {
		scheme   string
		in       []byte
		expected string
	}{
		{"ascii", []byte("hello"), "hello"},
		{"", []byte("hello"), "hello"},
		{"ascii", []byte{0x01, 'a'}, `"\x01a"`},
		{"hex", []byte{0xca, 0xfe}, "cafe"},
		{"base58", []byte("hello"), "Cn8eVZg"},
	}

	for _, test := range tests {
		t.Run(test.scheme, func(t *testing.T) {
			decoder, err := NewDecoder(test.scheme)
			require.NoError(t, err)
			assert.Equal(t, test.expected, decoder.Decode(test.in))
		})
	}
}

func TestNewDecoderInvalid(t *testing.T) {
	_, err := NewDecoder("rot13")
	assert.Error(t, err)

	_, err = NewDecoder("proto:///no-message-type.proto")
	assert.Error(t, err)
}
