package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgumentsString(t *testing.T) {
	args := Arguments{"name": "alpha", "count": float64(3)}

	t.Run("present", func(t *testing.T) {
		v, err := args.String("name")
		require.NoError(t, err)
		assert.Equal(t, "alpha", v)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := args.String("absent")
		assert.Error(t, err)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := args.String("count")
		assert.Error(t, err)
	})

	t.Run("optional missing is empty", func(t *testing.T) {
		v, err := args.OptionalString("absent")
		require.NoError(t, err)
		assert.Empty(t, v)
	})

	t.Run("optional wrong type still errors", func(t *testing.T) {
		_, err := args.OptionalString("count")
		assert.Error(t, err)
	})
}

func TestArgumentsInt(t *testing.T) {
	args := Arguments{"limit": float64(25), "ratio": float64(2.5), "name": "x"}

	t.Run("json number", func(t *testing.T) {
		v, err := args.Int("limit", 10)
		require.NoError(t, err)
		assert.Equal(t, 25, v)
	})

	t.Run("missing uses default", func(t *testing.T) {
		v, err := args.Int("absent", 10)
		require.NoError(t, err)
		assert.Equal(t, 10, v)
	})

	t.Run("fractional rejected", func(t *testing.T) {
		_, err := args.Int("ratio", 10)
		assert.Error(t, err)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := args.Int("name", 10)
		assert.Error(t, err)
	})
}

func TestArgumentsBool(t *testing.T) {
	args := Arguments{"flag": true, "name": "x"}

	v, err := args.Bool("flag", false)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = args.Bool("absent", true)
	require.NoError(t, err)
	assert.True(t, v)

	_, err = args.Bool("name", false)
	assert.Error(t, err)
}
