// Package formatter turns row keys typed on the command line into the bytes
// stored in the table.
package formatter

import (
	"fmt"
)

type Decode interface {
	Decode(data string) ([]byte, error)
}

func NewDecoder(scheme string) (Decode, error) {
	switch scheme {
	case "", "ascii":
		return &AsciiDecoder{}, nil
	case "hex":
		return &HexDecoder{}, nil
	case "base58":
		return &Base58Decoder{}, nil
	}

	return nil, fmt.Errorf("unknown key format %q, use 'ascii', 'hex' or 'base58'", scheme)
}

var _ Decode = (*AsciiDecoder)(nil)

type AsciiDecoder struct {
}

func (h *AsciiDecoder) Decode(data string) ([]byte, error) {
	return []byte(data), nil
}
