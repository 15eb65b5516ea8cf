package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"airwatch/backend/services/sensor-service/internal/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS sensor_readings (
		id            BIGSERIAL PRIMARY KEY,
		temperature   DOUBLE PRECISION,
		humidity      DOUBLE PRECISION,
		mq135         DOUBLE PRECISION,
		mq2           DOUBLE PRECISION,
		raw_timestamp TEXT        NOT NULL,
		event_time    TIMESTAMPTZ NOT NULL,
		event_date    DATE        NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS sensor_readings_event_date_idx ON sensor_readings (event_date);
`

const selectColumns = `id, temperature, humidity, mq135, mq2, raw_timestamp, event_time`

// ReadingRepository persists sensor readings in Postgres.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository returns repository.
func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// EnsureSchema creates the readings table when missing.
func (r *ReadingRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Insert appends a reading and sets its ID.
func (r *ReadingRepository) Insert(ctx context.Context, reading *models.Reading) error {
	const query = `
		INSERT INTO sensor_readings (temperature, humidity, mq135, mq2, raw_timestamp, event_time, event_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		nullable(reading.Temperature),
		nullable(reading.Humidity),
		nullable(reading.MQ135),
		nullable(reading.MQ2),
		reading.Timestamp,
		reading.EventTime,
		calendarDate(reading.Date()),
	).Scan(&reading.ID)
}

// QueryByDate returns all readings whose event date equals date, oldest first.
func (r *ReadingRepository) QueryByDate(ctx context.Context, date string) ([]models.Reading, error) {
	const query = `
		SELECT ` + selectColumns + `
		FROM sensor_readings
		WHERE event_date = $1
		ORDER BY event_time ASC, id ASC
	`
	return r.query(ctx, query, calendarDate(date))
}

// ListDistinctDates returns every event date present, ascending.
func (r *ReadingRepository) ListDistinctDates(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT to_char(event_date, 'YYYY-MM-DD') AS d
		FROM sensor_readings
		ORDER BY d ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dates, nil
}

// Latest returns the most recently inserted reading, or nil when the table is empty.
func (r *ReadingRepository) Latest(ctx context.Context) (*models.Reading, error) {
	const query = `
		SELECT ` + selectColumns + `
		FROM sensor_readings
		ORDER BY id DESC
		LIMIT 1
	`
	reading, err := scanReading(r.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// List returns the last limit readings by insertion order, newest first.
func (r *ReadingRepository) List(ctx context.Context, limit int) ([]models.Reading, error) {
	const query = `
		SELECT ` + selectColumns + `
		FROM sensor_readings
		ORDER BY id DESC
		LIMIT $1
	`
	return r.query(ctx, query, limit)
}

func (r *ReadingRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Reading, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReading(row rowScanner) (models.Reading, error) {
	var (
		reading     models.Reading
		temperature sql.NullFloat64
		humidity    sql.NullFloat64
		mq135       sql.NullFloat64
		mq2         sql.NullFloat64
		eventTime   time.Time
	)
	if err := row.Scan(
		&reading.ID,
		&temperature,
		&humidity,
		&mq135,
		&mq2,
		&reading.Timestamp,
		&eventTime,
	); err != nil {
		return models.Reading{}, err
	}

	reading.Temperature = fromNull(temperature)
	reading.Humidity = fromNull(humidity)
	reading.MQ135 = fromNull(mq135)
	reading.MQ2 = fromNull(mq2)

	// The raw timestamp keeps the offset it was written with; event_time comes back in the
	// session zone.
	if parsed, err := models.ParseTimestamp(reading.Timestamp); err == nil {
		reading.EventTime = parsed
	} else {
		reading.EventTime = eventTime.UTC()
	}
	return reading, nil
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func calendarDate(date string) time.Time {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return time.Time{}
	}
	return t
}
