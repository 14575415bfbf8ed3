package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCastToFloat(t *testing.T) {
	assert.Equal(t, 2.5, castToFloat(2.5))
	assert.Equal(t, 3.0, castToFloat(int64(3)))

	// The bucket script replies with the token balance as a string so the
	// fractional part survives the Lua-to-Redis conversion.
	assert.Equal(t, 0.25, castToFloat("0.25"))
	assert.Equal(t, 7.0, castToFloat("7"))

	assert.Zero(t, castToFloat("not-a-number"))
	assert.Zero(t, castToFloat(nil))
}

func TestCastToInt(t *testing.T) {
	assert.Equal(t, int64(1), castToInt(int64(1)))
	assert.Equal(t, int64(2), castToInt(2))
	assert.Equal(t, int64(3), castToInt(3.9))
	assert.Zero(t, castToInt("1"))
}

func TestAllow_ValidatesArguments(t *testing.T) {
	var missing *TokenBucket
	res, err := missing.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
	assert.False(t, res.Allowed)

	bucket := &TokenBucket{}
	_, err = bucket.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
}
