package protocol

import "errors"

var (
	ErrUnrecognizedTag = errors.New("protocol: unrecognized tag")
	ErrLengthMismatch  = errors.New("protocol: length mismatch")
	ErrBufferTooShort  = errors.New("protocol: buffer too short")
	ErrTextDecode      = errors.New("protocol: text decode failure")
)

// Reason labels for metrics and logs.
const (
	ReasonOK              = "ok"
	ReasonUnrecognizedTag = "unrecognized_tag"
	ReasonLengthMismatch  = "length_mismatch"
	ReasonBufferTooShort  = "buffer_too_short"
	ReasonTextDecode      = "text_decode"
	ReasonOther           = "other"
)

// Reason maps err onto a stable label. A nil error is ReasonOK.
func Reason(err error) string {
	switch {
	case err == nil:
		return ReasonOK
	case errors.Is(err, ErrTextDecode):
		return ReasonTextDecode
	case errors.Is(err, ErrBufferTooShort):
		return ReasonBufferTooShort
	case errors.Is(err, ErrUnrecognizedTag):
		return ReasonUnrecognizedTag
	case errors.Is(err, ErrLengthMismatch):
		return ReasonLengthMismatch
	default:
		return ReasonOther
	}
}
