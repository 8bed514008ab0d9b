package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twpayne/go-geom"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL catalog repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListStations returns all stations ordered by id.
func (r *PostgresRepository) ListStations(ctx context.Context) ([]*Station, error) {
	query := `
		SELECT
			s.id, s.name, s.lat, s.lon, s.height,
			COALESCE(array_agg(sv.variable_id ORDER BY sv.variable_id)
				FILTER (WHERE sv.variable_id IS NOT NULL), '{}')
		FROM stations s
		LEFT JOIN station_variables sv ON sv.station_id = s.id
		GROUP BY s.id, s.name, s.lat, s.lon, s.height
		ORDER BY s.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []*Station
	for rows.Next() {
		var station Station
		if err := rows.Scan(
			&station.ID,
			&station.Name,
			&station.Lat,
			&station.Lon,
			&station.Height,
			&station.VariableIDs,
		); err != nil {
			return nil, err
		}
		stations = append(stations, &station)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stations, nil
}

// GetStation returns the station with the given id.
func (r *PostgresRepository) GetStation(ctx context.Context, id string) (*Station, error) {
	query := `
		SELECT
			s.id, s.name, s.lat, s.lon, s.height,
			COALESCE(array_agg(sv.variable_id ORDER BY sv.variable_id)
				FILTER (WHERE sv.variable_id IS NOT NULL), '{}')
		FROM stations s
		LEFT JOIN station_variables sv ON sv.station_id = s.id
		WHERE s.id = $1
		GROUP BY s.id, s.name, s.lat, s.lon, s.height
	`

	var station Station
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&station.ID,
		&station.Name,
		&station.Lat,
		&station.Lon,
		&station.Height,
		&station.VariableIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}

	return &station, nil
}

// ListVariables returns all variables ordered by id.
func (r *PostgresRepository) ListVariables(ctx context.Context) ([]*Variable, error) {
	query := `
		SELECT id, long_name, COALESCE(standard_name, ''), unit, COALESCE(comment, '')
		FROM variables
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVariables(rows)
}

// GetVariable returns the variable with the given id.
func (r *PostgresRepository) GetVariable(ctx context.Context, id string) (*Variable, error) {
	query := `
		SELECT id, long_name, COALESCE(standard_name, ''), unit, COALESCE(comment, '')
		FROM variables
		WHERE id = $1
	`

	var variable Variable
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&variable.ID,
		&variable.LongName,
		&variable.StandardName,
		&variable.Unit,
		&variable.Comment,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVariableNotFound
		}
		return nil, err
	}

	return &variable, nil
}

// ListVariablesForStation returns the variables observed at a station, ordered by id.
func (r *PostgresRepository) ListVariablesForStation(ctx context.Context, stationID string) ([]*Variable, error) {
	// Distinguish "unknown station" from "station without variables"
	if _, err := r.GetStation(ctx, stationID); err != nil {
		return nil, err
	}

	query := `
		SELECT v.id, v.long_name, COALESCE(v.standard_name, ''), v.unit, COALESCE(v.comment, '')
		FROM variables v
		JOIN station_variables sv ON sv.variable_id = v.id
		WHERE sv.station_id = $1
		ORDER BY v.id
	`

	rows, err := r.pool.Query(ctx, query, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVariables(rows)
}

// StationsWithin returns all stations whose point lies within the polygon,
// ordered by id. The point-in-polygon test runs in process since the catalog
// is small and the stations table carries plain lat/lon columns.
func (r *PostgresRepository) StationsWithin(ctx context.Context, polygon *geom.Polygon) ([]*Station, error) {
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

func scanVariables(rows pgx.Rows) ([]*Variable, error) {
	var variables []*Variable
	for rows.Next() {
		var variable Variable
		if err := rows.Scan(
			&variable.ID,
			&variable.LongName,
			&variable.StandardName,
			&variable.Unit,
			&variable.Comment,
		); err != nil {
			return nil, err
		}
		variables = append(variables, &variable)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return variables, nil
}
