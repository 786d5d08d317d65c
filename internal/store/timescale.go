package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

// TimescaleStore serves the same collections from PostgreSQL. sensor_data
// is a hypertable; see scripts/init_db for the schema.
type TimescaleStore struct {
	pool *pgxpool.Pool
}

func NewTimescaleStore(ctx context.Context, connStr string) (*TimescaleStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &TimescaleStore{pool: pool}, nil
}

func (s *TimescaleStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}

func (s *TimescaleStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var alertColumns = []string{
	"id",
	"alert_type",
	"severity",
	"location",
	"intent",
	"risk_score",
	"description",
	"status",
	"timestamp",
}

func alertRow(a domain.Alert) []any {
	return []any{
		a.ID,
		a.AlertType,
		string(a.Severity),
		a.Location,
		string(a.Intent),
		a.RiskScore,
		a.Description,
		string(a.Status),
		a.Timestamp.UTC(),
	}
}

func scanAlert(row pgx.CollectableRow) (domain.Alert, error) {
	var (
		a                        domain.Alert
		severity, intent, status string
	)
	err := row.Scan(
		&a.ID,
		&a.AlertType,
		&severity,
		&a.Location,
		&intent,
		&a.RiskScore,
		&a.Description,
		&status,
		&a.Timestamp,
	)
	if err != nil {
		return domain.Alert{}, err
	}
	a.Severity = domain.Severity(severity)
	a.Intent = domain.Intent(intent)
	a.Status = domain.AlertStatus(status)
	a.Timestamp = a.Timestamp.UTC()
	return a, nil
}

func (s *TimescaleStore) InsertAlert(ctx context.Context, a domain.Alert) error {
	query := `
		INSERT INTO track_alerts
			(id, alert_type, severity, location, intent, risk_score, description, status, timestamp)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := s.pool.Exec(ctx, query, alertRow(a)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert alert %s: %w", a.ID, domain.ErrDuplicateAlert)
		}
		return fmt.Errorf("insert alert %s: %w", a.ID, err)
	}
	return nil
}

func (s *TimescaleStore) InsertAlerts(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	rows := make([][]any, len(alerts))
	for i, a := range alerts {
		rows[i] = alertRow(a)
	}

	_, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"track_alerts"},
		alertColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("CopyFrom failed for %d alerts: %w", len(alerts), domain.ErrDuplicateAlert)
		}
		return fmt.Errorf("CopyFrom failed for %d alerts: %w", len(alerts), err)
	}
	return nil
}

func (s *TimescaleStore) GetAlert(ctx context.Context, id string) (domain.Alert, error) {
	query := `SELECT ` + strings.Join(alertColumns, ", ") + ` FROM track_alerts WHERE id = $1`

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("find alert %s: %w", id, err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanAlert)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Alert{}, domain.ErrAlertNotFound
	}
	if err != nil {
		return domain.Alert{}, fmt.Errorf("scan alert %s: %w", id, err)
	}
	return a, nil
}

func (s *TimescaleStore) FindAlerts(ctx context.Context, q domain.AlertQuery) ([]domain.Alert, error) {
	var w whereBuilder
	if q.Status != "" {
		w.add("status = %s", string(q.Status))
	}

	query := `SELECT ` + strings.Join(alertColumns, ", ") + ` FROM track_alerts` + w.clause() +
		` ORDER BY timestamp DESC`
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("find alerts: %w", err)
	}
	alerts, err := pgx.CollectRows(rows, scanAlert)
	if err != nil {
		return nil, fmt.Errorf("scan alerts: %w", err)
	}
	return alerts, nil
}

func (s *TimescaleStore) UpdateAlertStatus(ctx context.Context, id string, status domain.AlertStatus) error {
	tag, err := s.pool.Exec(ctx, `UPDATE track_alerts SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update alert %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

func (s *TimescaleStore) CountAlerts(ctx context.Context, f domain.AlertCountFilter) (int64, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("status = %s", string(f.Status))
	}
	if f.Severity != "" {
		w.add("severity = %s", string(f.Severity))
	}
	if f.Intent != "" {
		w.add("intent = %s", string(f.Intent))
	}
	if !f.Since.IsZero() {
		w.add("timestamp >= %s", f.Since.UTC())
	}

	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM track_alerts`+w.clause(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}
	return n, nil
}

var trainColumns = []string{"id", "train_id", "speed", "location", "status", "last_update"}

func (s *TimescaleStore) InsertTrains(ctx context.Context, trains []domain.TrainStatus) error {
	if len(trains) == 0 {
		return nil
	}

	rows := make([][]any, len(trains))
	for i, t := range trains {
		rows[i] = []any{t.ID, t.TrainID, t.Speed, t.Location, string(t.Status), t.LastUpdate.UTC()}
	}

	_, err := s.pool.CopyFrom(ctx, pgx.Identifier{"trains"}, trainColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("CopyFrom failed for %d trains: %w", len(trains), err)
	}
	return nil
}

func (s *TimescaleStore) FindTrains(ctx context.Context, limit int) ([]domain.TrainStatus, error) {
	query := `SELECT ` + strings.Join(trainColumns, ", ") + ` FROM trains ORDER BY train_id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find trains: %w", err)
	}
	trains, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TrainStatus, error) {
		var (
			t      domain.TrainStatus
			status string
		)
		if err := row.Scan(&t.ID, &t.TrainID, &t.Speed, &t.Location, &status, &t.LastUpdate); err != nil {
			return domain.TrainStatus{}, err
		}
		t.Status = domain.TrainState(status)
		t.LastUpdate = t.LastUpdate.UTC()
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan trains: %w", err)
	}
	return trains, nil
}

func (s *TimescaleStore) HaltTrain(ctx context.Context, trainID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE trains SET status = $1, speed = 0, last_update = $2 WHERE train_id = $3`,
		string(domain.TrainHalted), at.UTC(), trainID,
	)
	if err != nil {
		return fmt.Errorf("halt train %s: %w", trainID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTrainNotFound
	}
	return nil
}

func (s *TimescaleStore) CountTrains(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM trains`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trains: %w", err)
	}
	return n, nil
}

var sensorColumns = []string{
	"timestamp",
	"id",
	"sensor_id",
	"sensor_type",
	"value",
	"unit",
	"location",
}

func (s *TimescaleStore) InsertSensorData(ctx context.Context, data []domain.SensorData) error {
	if len(data) == 0 {
		return nil
	}

	rows := make([][]any, len(data))
	for i, d := range data {
		rows[i] = []any{
			d.Timestamp.UTC(),
			d.ID,
			d.SensorID,
			string(d.SensorType),
			d.Value,
			d.Unit,
			d.Location,
		}
	}

	_, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"sensor_data"},
		sensorColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("CopyFrom failed for batch of %d: %w", len(data), err)
	}
	return nil
}

func (s *TimescaleStore) FindSensorData(ctx context.Context, limit int) ([]domain.SensorData, error) {
	query := `SELECT ` + strings.Join(sensorColumns, ", ") + ` FROM sensor_data ORDER BY timestamp DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find sensor data: %w", err)
	}
	data, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SensorData, error) {
		var (
			d   domain.SensorData
			typ string
		)
		if err := row.Scan(&d.Timestamp, &d.ID, &d.SensorID, &typ, &d.Value, &d.Unit, &d.Location); err != nil {
			return domain.SensorData{}, err
		}
		d.SensorType = domain.SensorType(typ)
		d.Timestamp = d.Timestamp.UTC()
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sensor data: %w", err)
	}
	return data, nil
}

// truncateAll empties every table. Used by integration tests.
func (s *TimescaleStore) truncateAll(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE track_alerts, trains, sensor_data`)
	return err
}

// SQLSTATE unique_violation
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// whereBuilder numbers placeholders as conditions are added.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(format, fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
