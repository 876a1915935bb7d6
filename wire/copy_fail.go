package wire

import (
	"bytes"

	"github.com/jackc/pgio"
)

// CopyFail aborts an in-progress COPY FROM STDIN with a diagnostic message.
type CopyFail struct {
	Message string
}

func (*CopyFail) Frontend() {}

func (dst *CopyFail) Decode(src []byte) error {
	idx := bytes.IndexByte(src, 0)
	if idx != len(src)-1 {
		return &invalidMessageFormatErr{messageType: "CopyFail"}
	}

	dst.Message = string(src[:idx])

	return nil
}

func (src *CopyFail) Encode(dst []byte) []byte {
	dst = append(dst, 'f')
	dst = pgio.AppendInt32(dst, int32(4+len(src.Message)+1))

	dst = append(dst, src.Message...)
	dst = append(dst, 0)

	return dst
}
