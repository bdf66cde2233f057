package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpstreamUsageSnapshot(t *testing.T) {
	var usage UpstreamUsage
	require.True(t, usage.Snapshot().IsZero())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			usage.Requests.Add(1)
		}()
	}
	wg.Wait()
	usage.RateLimited.Add(1)
	usage.FallbacksServed.Add(1)

	require.Equal(t, UpstreamSnapshot{Requests: 10, RateLimited: 1, FallbacksServed: 1}, usage.Snapshot())
}
