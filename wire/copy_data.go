package wire

import (
	"github.com/jackc/pgio"
)

// CopyData carries a chunk of copy payload. It flows in both directions, so it is both a frontend and a backend
// message.
type CopyData struct {
	Data []byte
}

func (*CopyData) Backend()  {}
func (*CopyData) Frontend() {}

func (dst *CopyData) Decode(src []byte) error {
	dst.Data = src
	return nil
}

func (src *CopyData) Encode(dst []byte) []byte {
	dst = append(dst, 'd')
	dst = pgio.AppendInt32(dst, int32(4+len(src.Data)))
	dst = append(dst, src.Data...)
	return dst
}
