package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDecoder(t *testing.T) {
	tests := []struct {
		scheme      string
		in          string
		expected    []byte
		expectedErr bool
	}{
		{"ascii", "row#1", []byte("row#1"), false},
		{"hex", "cafe", []byte{0xca, 0xfe}, false},
		{"hex", "zz", nil, true},
		{"base58", "Cn8eVZg", []byte("hello"), false},
	}

	for _, test := range tests {
		t.Run(test.scheme+"/"+test.in, func(t *testing.T) {
			decoder, err := NewDecoder(test.scheme)
			require.NoError(t, err)

			out, err := decoder.Decode(test.in)
			if test.expectedErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expected, out)
		})
	}

	_, err := NewDecoder("rot13")
	assert.Error(t, err)
}
