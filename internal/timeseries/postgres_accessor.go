package timeseries

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAccessor is a PostgreSQL implementation of Accessor.
//
// Series are read per request and never cached: the engine sits in front of a
// live observation feed and freshness wins over performance.
type PostgresAccessor struct {
	pool *pgxpool.Pool
}

// NewPostgresAccessor creates a new PostgreSQL time series accessor.
func NewPostgresAccessor(pool *pgxpool.Pool) *PostgresAccessor {
	return &PostgresAccessor{pool: pool}
}

// ReadSeries returns the full series for a station and variable in ascending
// timestamp order. Absent observations are stored as NULL values.
func (a *PostgresAccessor) ReadSeries(ctx context.Context, stationID, variableID string) ([]Point, error) {
	query := `
		SELECT observed_at, value
		FROM observations
		WHERE station_id = $1 AND variable_id = $2
		ORDER BY observed_at
	`

	rows, err := a.pool.Query(ctx, query, stationID, variableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.Time, &p.Value); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return points, nil
}
