package decoder

import (
	"fmt"
	"strings"
)

// Decode renders a stored cell value for display.
type Decode interface {
	Decode([]byte) string
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

	if strings.HasPrefix(scheme, "proto") {
		decoder, err := newProtoDecoder(scheme)
		if err != nil {
			return nil, fmt.Errorf("proto decoder: %w", err)
		}
		return decoder, nil
	}

	return nil, fmt.Errorf("unknown decoding scheme %q, use 'ascii', 'hex', 'base58' or 'proto:///path/to/file.proto@<message_type>'", scheme)
}
