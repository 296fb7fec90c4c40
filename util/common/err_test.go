package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	assert.NoError(t, Combine(nil, nil))

	a, b := errors.New("a"), errors.New("b")
	err := Combine(a, nil, b)
	assert.ErrorIs(t, err, a)
	assert.ErrorIs(t, err, b)
}

func TestNewError(t *testing.T) {
	assert.EqualError(t, NewError("port is not valid: ", 0), "port is not valid: 0")
	assert.EqualError(t, NewErrorf("ticket %d", 3), "ticket 3")
}

func TestRecover(t *testing.T) {
	assert.NotPanics(t, func() {
		defer Recover("job")
		panic("boom")
	})
}
