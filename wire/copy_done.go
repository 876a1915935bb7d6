package wire

// CopyDone signals the end of a copy data stream. Like CopyData it flows in both directions.
type CopyDone struct{}

func (*CopyDone) Backend()  {}
func (*CopyDone) Frontend() {}

func (dst *CopyDone) Decode(src []byte) error {
	if len(src) != 0 {
		return &invalidMessageLenErr{messageType: "CopyDone", expectedLen: 0, actualLen: len(src)}
	}

	return nil
}

func (src *CopyDone) Encode(dst []byte) []byte {
	return append(dst, 'c', 0, 0, 0, 4)
}
