package dashboard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartRegistryInstallReplacesPrevious(t *testing.T) {
	reg := NewChartRegistry()
	first := newChartHandle(SlotProducts, ChartBar)
	second := newChartHandle(SlotProducts, ChartBar)

	reg.Install(first)
	reg.Install(second)

	assert.False(t, first.Live())
	assert.True(t, second.Live())
	assert.Equal(t, 1, reg.Live(SlotProducts))
	current, ok := reg.Current(SlotProducts)
	require.True(t, ok)
	assert.Equal(t, second.ID, current.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestChartRegistryDestroy(t *testing.T) {
	reg := NewChartRegistry()
	h := newChartHandle(SlotConversion, ChartBar)
	reg.Install(h)

	assert.True(t, reg.Destroy(SlotConversion))
	assert.False(t, reg.Destroy(SlotConversion))
	assert.False(t, h.Live())
	assert.Equal(t, 0, reg.Live(SlotConversion))
}

func TestChartRegistryConcurrentInstallsLeaveOneLive(t *testing.T) {
	reg := NewChartRegistry()
	handles := make([]*ChartHandle, 20)
	var wg sync.WaitGroup
	for i := range handles {
		handles[i] = newChartHandle(SlotEngagementHeatmap, ChartHeatmap)
		wg.Add(1)
		go func(h *ChartHandle) {
			defer wg.Done()
			reg.Install(h)
		}(handles[i])
	}
	wg.Wait()

	live := 0
	for _, h := range handles {
		if h.Live() {
			live++
		}
	}
	assert.Equal(t, 1, live)
	assert.Equal(t, int64(20), reg.Created())
}

func TestChartRegistryDestroyAll(t *testing.T) {
	reg := NewChartRegistry()
	a := newChartHandle(SlotProducts, ChartBar)
	b := newChartHandle(SlotSegmentsDistribution, ChartDoughnut)
	reg.Install(a)
	reg.Install(b)

	reg.DestroyAll()

	assert.False(t, a.Live())
	assert.False(t, b.Live())
	_, ok := reg.Current(SlotProducts)
	assert.False(t, ok)
}
