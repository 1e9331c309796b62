package textsafe

import "testing"

// encodeCESU8 builds the raw 3-byte CESU-8 encoding of a UTF-16 surrogate
// half, the malformed byte pattern Sanitize is meant to repair or drop.
func encodeCESU8(half uint16) []byte {
	return []byte{
		0xE0 | byte(half>>12),
		0x80 | byte(half>>6)&0x3F,
		0x80 | byte(half)&0x3F,
	}
}

func TestSanitizePlainTextUnchanged(t *testing.T) {
	in := "hello, world! 日本語"
	if got := Sanitize(in); got != in {
		t.Fatalf("Sanitize(%q) = %q, want unchanged", in, got)
	}
}

func TestSanitizeRecombinesSplitSurrogatePair(t *testing.T) {
	// U+1F600 GRINNING FACE = high surrogate D83D, low surrogate DE00.
	hi := encodeCESU8(0xD83D)
	lo := encodeCESU8(0xDE00)

	b := append([]byte("before "), hi...)
	b = append(b, lo...)
	b = append(b, []byte(" after")...)

	got := Sanitize(string(b))
	want := "before \U0001F600 after"
	if got != want {
		t.Fatalf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitizeDropsUnpairedSurrogate(t *testing.T) {
	hi := encodeCESU8(0xD83D)
	b := append([]byte("before "), hi...)
	b = append(b, []byte(" after")...)

	got := Sanitize(string(b))
	want := "before  after"
	if got != want {
		t.Fatalf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitizeStripsReplacementChar(t *testing.T) {
	in := "abc�def"
	want := "abcdef"
	if got := Sanitize(in); got != want {
		t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
	}
}

func TestSanitizeHandlesEmptyString(t *testing.T) {
	if got := Sanitize(""); got != "" {
		t.Fatalf("Sanitize(\"\") = %q, want empty", got)
	}
}
