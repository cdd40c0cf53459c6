package contact

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedLockKeys(t *testing.T) {
	keys := sortedLockKeys([]string{PhoneKey("123"), EmailKey("a@x.com"), "", PhoneKey("123")})

	assert.Len(t, keys, 2)
	assert.True(t, sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i] < keys[j] }))
	assert.Equal(t, keys, sortedLockKeys([]string{EmailKey("a@x.com"), PhoneKey("123")}))
	// Email and phone values share no lock even when the text is equal.
	assert.NotEqual(t, lockKey64(EmailKey("42")), lockKey64(PhoneKey("42")))
}
