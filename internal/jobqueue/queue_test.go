package jobqueue

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"lastzrun/internal/lastz"
	"lastzrun/internal/partition"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func cmdFor(key string) lastz.JobCommand {
	return lastz.JobCommand{Partition: partition.Named(key), Args: []string{"lastz", "ref.2bit/" + key}}
}

func TestFIFO(t *testing.T) {
	q := New(cmdFor("c1"), cmdFor("c2"))
	q.Push(cmdFor("c3"))
	require.Equal(t, 3, q.Len())

	for _, want := range []string{"c1", "c2", "c3"} {
		c, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, want, c.Partition.Key)
	}
	_, ok := q.Pop()
	require.False(t, ok)
	require.Zero(t, q.Len())
}

func TestConcurrentPopDeliversEachOnce(t *testing.T) {
	const n = 500
	cmds := make([]lastz.JobCommand, n)
	for i := range cmds {
		cmds[i] = cmdFor(fmt.Sprintf("chr%d", i))
	}
	q := New(cmds...)

	var (
		mu   sync.Mutex
		seen = make(map[string]int, n)
		wg   sync.WaitGroup
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				c, ok := q.Pop()
				if !ok {
					return
				}
				mu.Lock()
				seen[c.Partition.Key]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	total := 0
	for key, count := range seen {
		require.Equal(t, 1, count, key)
		total += count
	}
	require.Equal(t, n, total)
}
