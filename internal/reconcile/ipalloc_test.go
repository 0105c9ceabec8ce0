package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPAllocatorSequence(t *testing.T) {
	alloc, err := newIPAllocator("10.0.0.10", "10.0.0.12")
	require.NoError(t, err)

	for _, want := range []string{"10.0.0.10", "10.0.0.11", "10.0.0.12"} {
		addr, err := alloc.Next()
		require.NoError(t, err)
		assert.Equal(t, want, addr.String())
	}

	_, err = alloc.Next()
	assert.ErrorIs(t, err, ErrIPRangeExhausted)
}

func TestIPAllocatorSingleAddress(t *testing.T) {
	alloc, err := newIPAllocator("10.0.0.10", "10.0.0.10")
	require.NoError(t, err)

	addr, err := alloc.Next()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.10", addr.String())

	_, err = alloc.Next()
	assert.ErrorIs(t, err, ErrIPRangeExhausted)
}

func TestIPAllocatorCrossesOctetBoundary(t *testing.T) {
	alloc, err := newIPAllocator("10.0.0.254", "10.0.1.1")
	require.NoError(t, err)

	var got []string
	for {
		addr, err := alloc.Next()
		if err != nil {
			break
		}
		got = append(got, addr.String())
	}
	assert.Equal(t, []string{"10.0.0.254", "10.0.0.255", "10.0.1.0", "10.0.1.1"}, got)
}

func TestIPAllocatorInvalidRange(t *testing.T) {
	_, err := newIPAllocator("not-an-ip", "10.0.0.10")
	assert.Error(t, err)

	_, err = newIPAllocator("10.0.0.10", "bogus")
	assert.Error(t, err)

	_, err = newIPAllocator("10.0.0.20", "10.0.0.10")
	assert.Error(t, err)
}
