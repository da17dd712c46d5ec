package formatter

import "encoding/hex"

var _ Decode = (*HexDecoder)(nil)

type HexDecoder struct {
}

func (h *HexDecoder) Decode(data string) ([]byte, error) {
	return hex.DecodeString(data)
}
