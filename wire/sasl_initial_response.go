package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// SASLInitialResponse is the frontend's opening SASL message naming the selected mechanism.
type SASLInitialResponse struct {
	AuthMechanism string
	Data          []byte
}

func (*SASLInitialResponse) Frontend() {}

func (dst *SASLInitialResponse) Decode(src []byte) error {
	*dst = SASLInitialResponse{}

	rp := 0

	idx := bytes.IndexByte(src, 0)
	if idx < 0 {
		return errors.New("invalid SASLInitialResponse")
	}

	dst.AuthMechanism = string(src[:idx])
	rp = idx + 1

	if len(src[rp:]) < 4 {
		return errors.New("invalid SASLInitialResponse")
	}
	dataLen := int(int32(binary.BigEndian.Uint32(src[rp:])))
	rp += 4

	if dataLen >= 0 {
		if len(src[rp:]) != dataLen {
			return errors.New("invalid SASLInitialResponse")
		}
		dst.Data = src[rp:]
	}

	return nil
}

func (src *SASLInitialResponse) Encode(dst []byte) []byte {
	dst = append(dst, 'p')
	sp := len(dst)
	dst = pgio.AppendInt32(dst, -1)

	dst = append(dst, []byte(src.AuthMechanism)...)
	dst = append(dst, 0)

	dst = pgio.AppendInt32(dst, int32(len(src.Data)))
	dst = append(dst, src.Data...)

	pgio.SetInt32(dst[sp:], int32(len(dst[sp:])))

	return dst
}

// SASLResponse carries subsequent frontend SASL challenge responses.
type SASLResponse struct {
	Data []byte
}

func (*SASLResponse) Frontend() {}

func (dst *SASLResponse) Decode(src []byte) error {
	*dst = SASLResponse{Data: src}
	return nil
}

func (src *SASLResponse) Encode(dst []byte) []byte {
	dst = append(dst, 'p')
	dst = pgio.AppendInt32(dst, int32(4+len(src.Data)))

	dst = append(dst, src.Data...)

	return dst
}
