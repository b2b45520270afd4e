package scryptenc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorHierarchy(t *testing.T) {
	for _, err := range []error{ErrTooShort, ErrBadMagic, ErrUnsupportedVersion, ErrChecksumMismatch} {
		assert.ErrorIs(t, err, ErrFormat)
		assert.NotErrorIs(t, err, ErrParams)
		assert.NotErrorIs(t, err, ErrAuthentication)
	}
	for _, err := range []error{ErrInvalidLogN, ErrInvalidR, ErrInvalidP, ErrParamsTooLarge} {
		assert.ErrorIs(t, err, ErrParams)
		assert.NotErrorIs(t, err, ErrFormat)
	}
	for _, err := range []error{ErrHeaderAuthentication, ErrPayloadAuthentication} {
		assert.ErrorIs(t, err, ErrAuthentication)
		assert.NotErrorIs(t, err, ErrFormat)
	}
	assert.False(t, errors.Is(ErrHeaderAuthentication, ErrPayloadAuthentication))
}
