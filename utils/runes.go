package utils

import (
	"unicode/utf8"
)

// MakeRuneByteSlices returns the runes of txt along with the byte offset at
// which each rune starts. The offsets let rune-indexed spans be mapped back
// to byte positions in the original string.
func MakeRuneByteSlices(txt string) ([]rune, []int) {
	runesCount := utf8.RuneCountInString(txt)
	runes := make([]rune, runesCount)
	bytes := make([]int, runesCount)

	bytesOffset := 0
	l := len(txt)
	for i := 0; i < runesCount && bytesOffset < l; i++ {
		ch, chSize := utf8.DecodeRuneInString(txt[bytesOffset:])
		runes[i] = ch
		bytes[i] = bytesOffset
		bytesOffset += chSize

	}
	return runes, bytes
}
