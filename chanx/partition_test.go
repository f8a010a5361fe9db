package chanx

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ulugbekov/csp"
)

func TestPartitionSplitsByPredicate(t *testing.T) {
	ctx := context.Background()
	in := csp.New[int](6)
	for i := 1; i <= 6; i++ {
		in.Send(i)
	}
	in.Close()

	even, odd := Partition(ctx, in, func(v int) bool { return v%2 == 0 })

	var evens, odds []int
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for {
			v, ok, err := Recv(ctx, even)
			if err != nil || !ok {
				return
			}
			evens = append(evens, v)
		}
	}()
	go func() {
		defer wg.Done()
		for {
			v, ok, err := Recv(ctx, odd)
			if err != nil || !ok {
				return
			}
			odds = append(odds, v)
		}
	}()
	wg.Wait()

	assert.Equal(t, []int{2, 4, 6}, evens)
	assert.Equal(t, []int{1, 3, 5}, odds)
}

func TestPartitionPanicsOnNilPredicate(t *testing.T) {
	in := csp.New[int](0)
	assert.Panics(t, func() {
		Partition(context.Background(), in, nil)
	})
}
