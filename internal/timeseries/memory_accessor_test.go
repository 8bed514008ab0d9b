package timeseries_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metobs/metobs-edr/internal/timeseries"
)

func TestMemoryAccessor_ReadSeries(t *testing.T) {
	accessor := timeseries.NewMemoryAccessor()
	at := time.Date(2024, 2, 22, 0, 0, 0, 0, time.UTC)
	v := 5.2
	accessor.SetSeries("station", "FG", []timeseries.Point{{Time: at, Value: &v}})

	points, err := accessor.ReadSeries(context.Background(), "station", "FG")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].Time.Equal(at))
	assert.Equal(t, 5.2, *points[0].Value)
}

func TestMemoryAccessor_UnknownPairIsEmpty(t *testing.T) {
	accessor := timeseries.NewMemoryAccessor()

	points, err := accessor.ReadSeries(context.Background(), "station", "FG")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestMemoryAccessor_ReturnsCopy(t *testing.T) {
	accessor := timeseries.NewMemoryAccessor()
	at := time.Date(2024, 2, 22, 0, 0, 0, 0, time.UTC)
	v := 5.2
	accessor.SetSeries("station", "FG", []timeseries.Point{{Time: at, Value: &v}})

	first, err := accessor.ReadSeries(context.Background(), "station", "FG")
	require.NoError(t, err)
	first[0].Value = nil

	second, err := accessor.ReadSeries(context.Background(), "station", "FG")
	require.NoError(t, err)
	require.NotNil(t, second[0].Value)
}

func TestMemoryAccessor_CancelledContext(t *testing.T) {
	accessor := timeseries.NewMemoryAccessor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := accessor.ReadSeries(ctx, "station", "FG")
	assert.ErrorIs(t, err, context.Canceled)
}
