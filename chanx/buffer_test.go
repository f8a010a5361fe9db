package chanx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulugbekov/csp"
)

func TestBufferWithReasonSize(t *testing.T) {
	ctx := context.Background()
	in := csp.New[int](10)
	for i := 1; i <= 10; i++ {
		in.Send(i)
	}
	in.Close()

	out := BufferWithReason(ctx, in, 5, time.Second)

	var results []BatchResult[int]
	for {
		r, ok, err := Recv(ctx, out)
		require.NoError(t, err)
		if !ok {
			break
		}
		results = append(results, r)
	}

	require.Len(t, results, 2)
	assert.Equal(t, FlushSize, results[0].Reason)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, results[0].Items)
	assert.Equal(t, FlushSize, results[1].Reason)
	assert.Equal(t, []int{6, 7, 8, 9, 10}, results[1].Items)
}

func TestBufferWithReasonTimeout(t *testing.T) {
	ctx := context.Background()
	in := csp.New[int](0)

	out := BufferWithReason(ctx, in, 100, 80*time.Millisecond)

	go func() {
		in.Send(1)
		in.Send(2)
		time.Sleep(200 * time.Millisecond)
		in.Close()
	}()

	r, ok, err := Recv(ctx, out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FlushTimeout, r.Reason)
	assert.Equal(t, []int{1, 2}, r.Items)
}

func TestBufferWithReasonClose(t *testing.T) {
	ctx := context.Background()
	in := csp.New[int](3)
	in.Send(1)
	in.Send(2)
	in.Send(3)
	in.Close()

	out := BufferWithReason(ctx, in, 100, time.Second)

	r, ok, err := Recv(ctx, out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FlushClose, r.Reason)
	assert.Equal(t, []int{1, 2, 3}, r.Items)
}

func TestBufferPlain(t *testing.T) {
	ctx := context.Background()
	in := csp.New[int](4)
	for i := 1; i <= 4; i++ {
		in.Send(i)
	}
	in.Close()

	out := Buffer(ctx, in, 2, time.Second)

	b1, ok, err := Recv(ctx, out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, b1)
}

func TestBufferWithReasonPanicsOnBadArgs(t *testing.T) {
	in := csp.New[int](0)
	assert.Panics(t, func() { BufferWithReason(context.Background(), in, 0, time.Second) })
	assert.Panics(t, func() { BufferWithReason(context.Background(), in, 1, 0) })
}
