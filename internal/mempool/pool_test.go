package mempool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClass(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{name: "small size gets minimum", input: 1, expected: 1024},
		{name: "exactly 1024", input: 1024, expected: 1024},
		{name: "just over 1024", input: 1025, expected: 2048},
		{name: "large size", input: 10000, expected: 10240},
		{name: "zero size", input: 0, expected: 1024},
		{name: "negative size", input: -1, expected: 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sizeClass(tt.input))
		})
	}
}

func TestGetBoolIsZeroed(t *testing.T) {
	buf := GetBool(100)
	require.Len(t, buf, 100)
	for i := range buf {
		buf[i] = true
	}
	PutBool(buf)

	again := GetBool(100)
	require.Len(t, again, 100)
	for i, v := range again {
		assert.False(t, v, "index %d not cleared", i)
	}
	PutBool(again)
}

func TestPutNilIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		PutBool(nil)
		PutInts(nil)
	})
}

func TestGetIntsIsEmptyStack(t *testing.T) {
	stack := GetInts(10)
	assert.Empty(t, stack)
	assert.GreaterOrEqual(t, cap(stack), 10)

	for i := range 3000 {
		stack = append(stack, i)
	}
	PutInts(stack)

	next := GetInts(10)
	assert.Empty(t, next)
	PutInts(next)
}

func TestConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				b := GetBool(4096)
				s := GetInts(64)
				s = append(s, 1, 2, 3)
				PutInts(s)
				PutBool(b)
			}
		}()
	}
	wg.Wait()
}
