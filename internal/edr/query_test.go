package edr_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metobs/metobs-edr/internal/edr"
)

func TestResolveInterval(t *testing.T) {
	extent := testTemporalExtent()

	tests := []struct {
		name      string
		raw       string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "closed interval",
			raw:       "2024-02-22T01:00:00Z/2024-02-22T02:00:00Z",
			wantStart: time.Date(2024, 2, 22, 1, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 2, 22, 2, 0, 0, 0, time.UTC),
		},
		{
			name:      "empty expression yields full extent",
			raw:       "",
			wantStart: extent.Start,
			wantEnd:   extent.End,
		},
		{
			name:      "single instant",
			raw:       "2024-02-23T00:00:00Z",
			wantStart: time.Date(2024, 2, 23, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 2, 23, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "open start clamps to extent start",
			raw:       "../2024-02-23T00:00:00Z",
			wantStart: extent.Start,
			wantEnd:   time.Date(2024, 2, 23, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "open end clamps to extent end",
			raw:       "2024-02-23T00:00:00Z/..",
			wantStart: time.Date(2024, 2, 23, 0, 0, 0, 0, time.UTC),
			wantEnd:   extent.End,
		},
		{
			name:      "empty side is an open bound",
			raw:       "/2024-02-23T00:00:00Z",
			wantStart: extent.Start,
			wantEnd:   time.Date(2024, 2, 23, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interval, err := edr.ResolveInterval(tt.raw, extent)
			require.NoError(t, err)
			assert.True(t, interval.Start.Equal(tt.wantStart), "start %s != %s", interval.Start, tt.wantStart)
			assert.True(t, interval.End.Equal(tt.wantEnd), "end %s != %s", interval.End, tt.wantEnd)
		})
	}
}

func TestResolveInterval_Invalid(t *testing.T) {
	extent := testTemporalExtent()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "end before start", raw: "2024-02-23T00:00:00Z/2024-02-22T00:00:00Z"},
		{name: "malformed start", raw: "not-a-date/2024-02-22T00:00:00Z"},
		{name: "malformed end", raw: "2024-02-22T00:00:00Z/not-a-date"},
		{name: "too many parts", raw: "2024-02-22T00:00:00Z/2024-02-23T00:00:00Z/2024-02-24T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := edr.ResolveInterval(tt.raw, extent)
			assert.ErrorIs(t, err, edr.ErrInvalidInterval)
		})
	}
}

func TestResolveParameters_DefaultIsSortedByID(t *testing.T) {
	ids, err := edr.ResolveParameters("", testVariables())
	require.NoError(t, err)
	assert.Equal(t, []string{"DDVEC", "FG"}, ids)

	// Repeated calls yield the identical ordering
	again, err := edr.ResolveParameters("", testVariables())
	require.NoError(t, err)
	assert.Equal(t, ids, again)
}

func TestResolveParameters_ExplicitIsCasefoldSorted(t *testing.T) {
	// Request order must not leak into the result
	ids, err := edr.ResolveParameters("FG, DDVEC", testVariables())
	require.NoError(t, err)
	assert.Equal(t, []string{"DDVEC", "FG"}, ids)

	reversed, err := edr.ResolveParameters("DDVEC,FG", testVariables())
	require.NoError(t, err)
	assert.Equal(t, ids, reversed)
}

func TestResolveParameters_CaseInsensitiveAndTrimmed(t *testing.T) {
	ids, err := edr.ResolveParameters(" fg , ddvec ", testVariables())
	require.NoError(t, err)
	assert.Equal(t, []string{"DDVEC", "FG"}, ids)
}

func TestResolveParameters_DuplicatesCollapse(t *testing.T) {
	ids, err := edr.ResolveParameters("FG,fg,FG", testVariables())
	require.NoError(t, err)
	assert.Equal(t, []string{"FG"}, ids)
}

func TestResolveParameters_ReportsEveryUnknownName(t *testing.T) {
	_, err := edr.ResolveParameters("FG,UNKNOWN", testVariables())

	var unknown *edr.UnknownParametersError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"UNKNOWN"}, unknown.Names)

	_, err = edr.ResolveParameters("ZZ,FG,AA", testVariables())
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"AA", "ZZ"}, unknown.Names)
	assert.Contains(t, err.Error(), "AA")
	assert.Contains(t, err.Error(), "ZZ")
}

func TestParseBBox(t *testing.T) {
	box, err := edr.ParseBBox("5.0,52.0,6.0,52.1")
	require.NoError(t, err)
	assert.Equal(t, edr.BBox{MinLon: 5.0, MinLat: 52.0, MaxLon: 6.0, MaxLat: 52.1}, box)

	assert.True(t, box.Contains(5.0, 52.0))
	assert.True(t, box.Contains(6.0, 52.1))
	assert.True(t, box.Contains(5.5, 52.05))
	assert.False(t, box.Contains(4.9, 52.0))
	assert.False(t, box.Contains(5.5, 52.2))
}

func TestParseBBox_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "too few values", raw: "5.0,52.0,6.0"},
		{name: "not a number", raw: "5.0,52.0,east,52.1"},
		{name: "min lon exceeds max", raw: "6.0,52.0,5.0,52.1"},
		{name: "min lat exceeds max", raw: "5.0,52.1,6.0,52.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := edr.ParseBBox(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestParsePolygon(t *testing.T) {
	polygon, err := edr.ParsePolygon("POLYGON((5.0 52.0, 6.0 52.0, 6.0 52.1, 5.0 52.1, 5.0 52.0))")
	require.NoError(t, err)
	assert.Equal(t, 1, polygon.NumLinearRings())
}

func TestParsePolygon_Invalid(t *testing.T) {
	_, err := edr.ParsePolygon("not wkt at all")
	assert.Error(t, err)

	_, err = edr.ParsePolygon("POINT(5.0 52.0)")
	assert.Error(t, err)
}
