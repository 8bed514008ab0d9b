package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/twpayne/go-geom"
)

// SnapshotRepository is an in-memory implementation of Repository backed by a
// catalog snapshot loaded once at startup. It is safe for concurrent use: the
// snapshot is never mutated after construction.
type SnapshotRepository struct {
	mu        sync.RWMutex
	stations  map[string]*Station
	variables map[string]*Variable
}

// NewSnapshotRepository creates a snapshot repository from the given stations
// and variables.
func NewSnapshotRepository(stations []*Station, variables []*Variable) *SnapshotRepository {
	r := &SnapshotRepository{
		stations:  make(map[string]*Station, len(stations)),
		variables: make(map[string]*Variable, len(variables)),
	}
	for _, s := range stations {
		r.stations[s.ID] = s
	}
	for _, v := range variables {
		r.variables[v.ID] = v
	}
	return r
}

// Reload replaces the snapshot contents. Callers holding an extent cache must
// invalidate it after a reload.
func (r *SnapshotRepository) Reload(stations []*Station, variables []*Variable) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stations = make(map[string]*Station, len(stations))
	r.variables = make(map[string]*Variable, len(variables))
	for _, s := range stations {
		r.stations[s.ID] = s
	}
	for _, v := range variables {
		r.variables[v.ID] = v
	}
}

// ListStations returns all stations sorted by id.
func (r *SnapshotRepository) ListStations(_ context.Context) ([]*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stations := make([]*Station, 0, len(r.stations))
	for _, s := range r.stations {
		stations = append(stations, s)
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID })
	return stations, nil
}

// GetStation returns the station with the given id.
func (r *SnapshotRepository) GetStation(_ context.Context, id string) (*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stations[id]
	if !ok {
		return nil, ErrStationNotFound
	}
	return s, nil
}

// ListVariables returns all variables sorted by id.
func (r *SnapshotRepository) ListVariables(_ context.Context) ([]*Variable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	variables := make([]*Variable, 0, len(r.variables))
	for _, v := range r.variables {
		variables = append(variables, v)
	}
	sort.Slice(variables, func(i, j int) bool { return variables[i].ID < variables[j].ID })
	return variables, nil
}

// GetVariable returns the variable with the given id.
func (r *SnapshotRepository) GetVariable(_ context.Context, id string) (*Variable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.variables[id]
	if !ok {
		return nil, ErrVariableNotFound
	}
	return v, nil
}

// ListVariablesForStation returns the variables observed at a station, sorted by id.
func (r *SnapshotRepository) ListVariablesForStation(_ context.Context, stationID string) ([]*Variable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stations[stationID]
	if !ok {
		return nil, ErrStationNotFound
	}

	variables := make([]*Variable, 0, len(s.VariableIDs))
	for _, id := range s.VariableIDs {
		if v, ok := r.variables[id]; ok {
			variables = append(variables, v)
		}
	}
	sort.Slice(variables, func(i, j int) bool { return variables[i].ID < variables[j].ID })
	return variables, nil
}

// StationsWithin returns all stations whose point lies within the polygon,
// sorted by id.
func (r *SnapshotRepository) StationsWithin(ctx context.Context, polygon *geom.Polygon) ([]*Station, error) {
	stations, err := r.ListStations(ctx)
	if err != nil {
		return nil, err
	}

	var within []*Station
	for _, s := range stations {
		if pointInPolygon(polygon, s.Lon, s.Lat) {
			within = append(within, s)
		}
	}
	return within, nil
}
