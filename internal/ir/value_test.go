package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedKeysUTF16Order(t *testing.T) {
	// U+E000 - UTF-8: [0xEE, 0x80, 0x80], UTF-16: [0xE000]
	// U+10000 - UTF-8: [0xF0, 0x90, 0x80, 0x80], UTF-16: [0xD800, 0xDC00]
	obj := IRObject{
		"\uE000":     IRInt(1),
		"\U00010000": IRInt(2),
		"a":          IRInt(3),
	}

	assert.Equal(t, []string{"a", "\U00010000", "\uE000"}, obj.SortedKeys())
}

func TestSortedKeysPrefixFirst(t *testing.T) {
	obj := IRObject{"ab": IRInt(1), "a": IRInt(2)}
	assert.Equal(t, []string{"a", "ab"}, obj.SortedKeys())
}

func TestNewIRObjectFromPairs(t *testing.T) {
	obj := NewIRObjectFromPairs(
		O("kind", IRString("histogram")),
		O("entries", IRInt(4)),
		O("kind", IRString("counter")),
	)

	assert.Len(t, obj, 2)
	assert.Equal(t, IRString("counter"), obj["kind"], "later keys win")
}
