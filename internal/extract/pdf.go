package extract

import (
	"strings"
)

// PDFText salvages readable text from raw PDF bytes by keeping printable
// ASCII runs. It is deliberately crude: curated PDF sources are mostly
// uncompressed text streams, and a salvage below the usefulness floor is
// simply discarded.
func PDFText(body []byte) (string, bool) {
	var b strings.Builder
	b.Grow(len(body) / 2)
	for _, c := range body {
		if c == '\n' || (c >= 0x20 && c <= 0x7e) {
			b.WriteByte(c)
		} else {
			b.WriteByte(' ')
		}
	}
	text := strings.Join(strings.Fields(b.String()), " ")
	if len(text) <= 100 {
		return "", false
	}
	return text, true
}
