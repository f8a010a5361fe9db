package chanx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulugbekov/csp"
)

func TestMapAppliesFn(t *testing.T) {
	ctx := context.Background()
	in := csp.New[int](3)
	for _, v := range []int{1, 2, 3} {
		in.Send(v)
	}
	in.Close()

	out := Map(ctx, in, func(v int) int { return v * v })

	var got []int
	for {
		v, ok, err := Recv(ctx, out)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 4, 9}, got)
}

func TestFilterKeepsMatching(t *testing.T) {
	ctx := context.Background()
	in := csp.New[int](5)
	for i := 1; i <= 5; i++ {
		in.Send(i)
	}
	in.Close()

	out := Filter(ctx, in, func(v int) bool { return v%2 == 0 })

	var got []int
	for {
		v, ok, err := Recv(ctx, out)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 4}, got)
}

func TestTakeStopsAfterN(t *testing.T) {
	ctx := context.Background()
	in := csp.New[int](5)
	for i := 1; i <= 5; i++ {
		in.Send(i)
	}
	in.Close()

	out := Take(ctx, in, 3)

	var got []int
	for {
		v, ok, err := Recv(ctx, out)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestTakeMoreThanAvailableForwardsAll(t *testing.T) {
	ctx := context.Background()
	in := csp.New[int](2)
	in.Send(1)
	in.Send(2)
	in.Close()

	out := Take(ctx, in, 10)

	var got []int
	for {
		v, ok, err := Recv(ctx, out)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2}, got)
}

func TestSkipDropsLeadingValues(t *testing.T) {
	ctx := context.Background()
	in := csp.New[int](5)
	for i := 1; i <= 5; i++ {
		in.Send(i)
	}
	in.Close()

	out := Skip(ctx, in, 2)

	var got []int
	for {
		v, ok, err := Recv(ctx, out)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{3, 4, 5}, got)
}

func TestSkipAllLeavesEmpty(t *testing.T) {
	ctx := context.Background()
	in := csp.New[int](3)
	for i := 1; i <= 3; i++ {
		in.Send(i)
	}
	in.Close()

	out := Skip(ctx, in, 10)

	_, ok, err := Recv(ctx, out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScanEmitsRunningTotal(t *testing.T) {
	ctx := context.Background()
	in := csp.New[int](4)
	for _, v := range []int{1, 2, 3, 4} {
		in.Send(v)
	}
	in.Close()

	out := Scan(ctx, in, 0, func(acc, v int) int { return acc + v })

	var got []int
	for {
		v, ok, err := Recv(ctx, out)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 3, 6, 10}, got)
}
