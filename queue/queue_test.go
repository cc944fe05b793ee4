package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFIFOOrdering(t *testing.T) {
	q := New[int](4)
	for i := 1; i <= 3; i++ {
		require.NoError(t, q.PushBack(i))
	}
	for i := 1; i <= 3; i++ {
		require.False(t, q.Empty())
		require.Equal(t, i, q.PeekFront())
		q.PopFront()
	}
	require.True(t, q.Empty())
}

func TestOverflowReported(t *testing.T) {
	q := New[int](2)
	require.NoError(t, q.PushBack(1))
	require.NoError(t, q.PushBack(2))
	require.True(t, q.Full())
	require.ErrorIs(t, q.PushBack(3), ErrFull)
}

func TestClear(t *testing.T) {
	q := New[int](4)
	_ = q.PushBack(1)
	_ = q.PushBack(2)
	q.Clear()
	require.True(t, q.Empty())
	require.Equal(t, 0, q.Len())
}

func TestWrapAround(t *testing.T) {
	q := New[int](3)
	_ = q.PushBack(1)
	_ = q.PushBack(2)
	q.PopFront()
	_ = q.PushBack(3)
	_ = q.PushBack(4)
	require.True(t, q.Full())

	var got []int
	for !q.Empty() {
		got = append(got, q.PeekFront())
		q.PopFront()
	}
	require.Equal(t, []int{2, 3, 4}, got)
}
