package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestReasonLabelsWrappedErrors(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ReasonOK},
		{fmt.Errorf("%w: header", ErrUnrecognizedTag), ReasonUnrecognizedTag},
		{fmt.Errorf("%w: data length 9 exceeds 4 remaining", ErrLengthMismatch), ReasonLengthMismatch},
		{fmt.Errorf("%w: got 0 bytes", ErrBufferTooShort), ReasonBufferTooShort},
		{fmt.Errorf("%w: illegal base64 data", ErrTextDecode), ReasonTextDecode},
		{errors.New("boom"), ReasonOther},
	}
	for _, tc := range cases {
		if got := Reason(tc.err); got != tc.want {
			t.Fatalf("Reason(%v)=%q want %q", tc.err, got, tc.want)
		}
	}
}
