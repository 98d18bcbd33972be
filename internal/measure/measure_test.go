package measure

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricAVGDuration(t *testing.T) {
	t.Parallel()

	mt := New().Metric("ins")
	mt.AddDuration(2 * time.Millisecond)
	mt.AddDuration(4 * time.Millisecond)

	assert.Equal(t, int64(2), mt.Count())
	assert.Equal(t, 3*time.Millisecond, mt.AVGDuration())
}

func TestMetricEmpty(t *testing.T) {
	t.Parallel()

	mt := New().Metric("outs")

	assert.Equal(t, int64(0), mt.Count())
	assert.Equal(t, time.Duration(0), mt.AVGDuration())
	assert.Equal(t, time.Duration(0), mt.TotalDuration())
}

func TestMetricTotalDuration(t *testing.T) {
	t.Parallel()

	mt := New().Metric("universe")
	mt.SetTotalDuration(1500 * time.Millisecond)

	assert.Equal(t, 1500*time.Millisecond, mt.TotalDuration())
}

func TestMeasureRegistrationOrder(t *testing.T) {
	t.Parallel()

	m := New()
	first := m.Metric("universe")
	m.Metric("ins")
	m.Metric("outs")

	require.Same(t, first, m.Metric("universe"))

	names := make([]string, 0, 3)
	for _, mt := range m.Metrics() {
		names = append(names, mt.Name())
	}
	assert.Equal(t, []string{"universe", "ins", "outs"}, names)
}

func TestMetricConcurrentAdds(t *testing.T) {
	t.Parallel()

	mt := New().Metric("ins")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mt.AddDuration(time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), mt.Count())
	assert.Equal(t, time.Millisecond, mt.AVGDuration())
}

func TestRound(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 90*time.Minute, round(90*time.Minute+12*time.Second))
	assert.Equal(t, 1230*time.Millisecond, round(1234*time.Millisecond))
	assert.Equal(t, 500*time.Nanosecond, round(500*time.Nanosecond))
}
