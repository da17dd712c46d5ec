package decoder

import "strconv"

var _ Decode = (*AsciiDecoder)(nil)

// AsciiDecoder prints printable values as is and quotes the others.
type AsciiDecoder struct {
}

func (h *AsciiDecoder) Decode(data []byte) string {
	value := string(data)
	for _, r := range value {
		if !strconv.IsPrint(r) {
			return strconv.QuoteToASCII(value)
		}
	}

	return value
}
