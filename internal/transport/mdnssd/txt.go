package mdnssd

import (
	"errors"
	"sort"
	"strings"
)

const (
	// RFC 6763 limits each TXT string to 255 bytes.
	maxTxtRecordLen = 255

	recordKey = "n"

	// Chunks are keyed "n<i>=" with i a single byte from '0' to '~'.
	chunkOverhead = len(recordKey) + 2
	maxChunks     = '~' - '0' + 1
)

var (
	errTextTooLarge   = errors.New("mdnssd: record text too large for txt records")
	errNoRecordText   = errors.New("mdnssd: no record text in txt records")
	errInvalidTxtItem = errors.New("mdnssd: invalid record chunk")
)

// splitText packs record text into TXT strings, splitting when one string
// cannot hold it.
func splitText(text string) ([]string, error) {
	single := recordKey + "=" + text
	if len(single) <= maxTxtRecordLen {
		return []string{single}, nil
	}
	per := maxTxtRecordLen - chunkOverhead
	n := (len(text) + per - 1) / per
	if n > maxChunks {
		return nil, errTextTooLarge
	}
	out := make([]string, 0, n)
	for i, off := 0, 0; off < len(text); i++ {
		end := min(off+per, len(text))
		out = append(out, recordKey+string(rune('0'+i))+"="+text[off:end])
		off = end
	}
	return out, nil
}

// joinText reverses splitText. Unrelated TXT strings are ignored.
func joinText(txts []string) (string, error) {
	var chunks []string
	for _, txt := range txts {
		if v, ok := strings.CutPrefix(txt, recordKey+"="); ok {
			return v, nil
		}
		if !strings.HasPrefix(txt, recordKey) || len(txt) < chunkOverhead {
			continue
		}
		if txt[chunkOverhead-1] != '=' {
			continue
		}
		if idx := txt[len(recordKey)]; idx < '0' || idx > '~' {
			return "", errInvalidTxtItem
		}
		chunks = append(chunks, txt)
	}
	if len(chunks) == 0 {
		return "", errNoRecordText
	}
	sort.Strings(chunks)
	var b strings.Builder
	for i, c := range chunks {
		if c[len(recordKey)] != byte('0'+i) {
			return "", errInvalidTxtItem
		}
		b.WriteString(c[chunkOverhead:])
	}
	return b.String(), nil
}
