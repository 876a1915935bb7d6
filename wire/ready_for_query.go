package wire

// ReadyForQuery indicates the backend is ready for a new query cycle. TxStatus is 'I' (idle), 'T' (in transaction
// block) or 'E' (in failed transaction block).
type ReadyForQuery struct {
	TxStatus byte
}

func (*ReadyForQuery) Backend() {}

func (dst *ReadyForQuery) Decode(src []byte) error {
	if len(src) != 1 {
		return &invalidMessageLenErr{messageType: "ReadyForQuery", expectedLen: 1, actualLen: len(src)}
	}

	dst.TxStatus = src[0]

	return nil
}

func (src *ReadyForQuery) Encode(dst []byte) []byte {
	return append(dst, 'Z', 0, 0, 0, 5, src.TxStatus)
}
