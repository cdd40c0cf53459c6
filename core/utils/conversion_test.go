package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPtrDeref(t *testing.T) {
	p := Ptr("mcfly@hillvalley.edu")
	assert.Equal(t, "mcfly@hillvalley.edu", Deref(p))
	assert.Equal(t, "", Deref[string](nil))
	assert.Equal(t, int64(0), Deref[int64](nil))
}

func TestNonEmpty(t *testing.T) {
	assert.Nil(t, NonEmpty(""))
	assert.Equal(t, "123456", *NonEmpty("123456"))
}
