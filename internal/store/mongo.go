package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

const (
	alertsCollection = "alerts"
	trainsCollection = "trains"
	sensorCollection = "sensor_data"
)

// MongoStore keeps the document layout the dashboard has always read:
// string ids in an "id" field and ISO-8601 timestamp strings.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database

	alerts  *mongo.Collection
	trains  *mongo.Collection
	sensors *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:  client,
		db:      db,
		alerts:  db.Collection(alertsCollection),
		trains:  db.Collection(trainsCollection),
		sensors: db.Collection(sensorCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.alerts: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "intent", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		s.trains: {
			{Keys: bson.D{{Key: "train_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.sensors: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "sensor_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes every collection. Used by integration tests.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

type alertDoc struct {
	ID          string  `bson:"id"`
	AlertType   string  `bson:"alert_type"`
	Severity    string  `bson:"severity"`
	Location    string  `bson:"location"`
	Intent      string  `bson:"intent"`
	RiskScore   float64 `bson:"risk_score"`
	Description string  `bson:"description"`
	Status      string  `bson:"status"`
	Timestamp   string  `bson:"timestamp"`
}

func toAlertDoc(a domain.Alert) alertDoc {
	return alertDoc{
		ID:          a.ID,
		AlertType:   a.AlertType,
		Severity:    string(a.Severity),
		Location:    a.Location,
		Intent:      string(a.Intent),
		RiskScore:   a.RiskScore,
		Description: a.Description,
		Status:      string(a.Status),
		Timestamp:   domain.FormatTimestamp(a.Timestamp),
	}
}

func (d alertDoc) toDomain() (domain.Alert, error) {
	ts, err := domain.ParseTimestamp(d.Timestamp)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("alert %s: bad timestamp %q: %w", d.ID, d.Timestamp, err)
	}
	return domain.Alert{
		ID:          d.ID,
		AlertType:   d.AlertType,
		Severity:    domain.Severity(d.Severity),
		Location:    d.Location,
		Intent:      domain.Intent(d.Intent),
		RiskScore:   d.RiskScore,
		Description: d.Description,
		Status:      domain.AlertStatus(d.Status),
		Timestamp:   ts,
	}, nil
}

func (s *MongoStore) InsertAlert(ctx context.Context, a domain.Alert) error {
	if _, err := s.alerts.InsertOne(ctx, toAlertDoc(a)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert alert %s: %w", a.ID, domain.ErrDuplicateAlert)
		}
		return fmt.Errorf("insert alert %s: %w", a.ID, err)
	}
	return nil
}

func (s *MongoStore) InsertAlerts(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	docs := make([]alertDoc, len(alerts))
	for i, a := range alerts {
		docs[i] = toAlertDoc(a)
	}
	if _, err := s.alerts.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert %d alerts: %w", len(alerts), domain.ErrDuplicateAlert)
		}
		return fmt.Errorf("insert %d alerts: %w", len(alerts), err)
	}
	return nil
}

func (s *MongoStore) GetAlert(ctx context.Context, id string) (domain.Alert, error) {
	var doc alertDoc
	err := s.alerts.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Alert{}, domain.ErrAlertNotFound
	}
	if err != nil {
		return domain.Alert{}, fmt.Errorf("find alert %s: %w", id, err)
	}
	return doc.toDomain()
}

func (s *MongoStore) FindAlerts(ctx context.Context, q domain.AlertQuery) ([]domain.Alert, error) {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = string(q.Status)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetProjection(bson.M{"_id": 0})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.alerts.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []alertDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}

	result := make([]domain.Alert, 0, len(docs))
	for _, d := range docs {
		a, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

func (s *MongoStore) UpdateAlertStatus(ctx context.Context, id string, status domain.AlertStatus) error {
	res, err := s.alerts.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": string(status)}},
	)
	if err != nil {
		return fmt.Errorf("update alert %s: %w", id, err)
	}
	// MatchedCount, not ModifiedCount: re-setting the same status is a success.
	if res.MatchedCount == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

func (s *MongoStore) CountAlerts(ctx context.Context, f domain.AlertCountFilter) (int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Severity != "" {
		filter["severity"] = string(f.Severity)
	}
	if f.Intent != "" {
		filter["intent"] = string(f.Intent)
	}
	if !f.Since.IsZero() {
		filter["timestamp"] = bson.M{"$gte": domain.FormatTimestamp(f.Since)}
	}

	n, err := s.alerts.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}
	return n, nil
}

type trainDoc struct {
	ID         string  `bson:"id"`
	TrainID    string  `bson:"train_id"`
	Speed      float64 `bson:"speed"`
	Location   string  `bson:"location"`
	Status     string  `bson:"status"`
	LastUpdate string  `bson:"last_update"`
}

func (s *MongoStore) InsertTrains(ctx context.Context, trains []domain.TrainStatus) error {
	if len(trains) == 0 {
		return nil
	}

	docs := make([]trainDoc, len(trains))
	for i, t := range trains {
		docs[i] = trainDoc{
			ID:         t.ID,
			TrainID:    t.TrainID,
			Speed:      t.Speed,
			Location:   t.Location,
			Status:     string(t.Status),
			LastUpdate: domain.FormatTimestamp(t.LastUpdate),
		}
	}
	if _, err := s.trains.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert %d trains: %w", len(trains), err)
	}
	return nil
}

func (s *MongoStore) FindTrains(ctx context.Context, limit int) ([]domain.TrainStatus, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.trains.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find trains: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []trainDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode trains: %w", err)
	}

	result := make([]domain.TrainStatus, 0, len(docs))
	for _, d := range docs {
		ts, err := domain.ParseTimestamp(d.LastUpdate)
		if err != nil {
			return nil, fmt.Errorf("train %s: bad last_update %q: %w", d.TrainID, d.LastUpdate, err)
		}
		result = append(result, domain.TrainStatus{
			ID:         d.ID,
			TrainID:    d.TrainID,
			Speed:      d.Speed,
			Location:   d.Location,
			Status:     domain.TrainState(d.Status),
			LastUpdate: ts,
		})
	}
	return result, nil
}

func (s *MongoStore) HaltTrain(ctx context.Context, trainID string, at time.Time) error {
	res, err := s.trains.UpdateOne(ctx,
		bson.M{"train_id": trainID},
		bson.M{"$set": bson.M{
			"status":      string(domain.TrainHalted),
			"speed":       0.0,
			"last_update": domain.FormatTimestamp(at),
		}},
	)
	if err != nil {
		return fmt.Errorf("halt train %s: %w", trainID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTrainNotFound
	}
	return nil
}

func (s *MongoStore) CountTrains(ctx context.Context) (int64, error) {
	n, err := s.trains.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count trains: %w", err)
	}
	return n, nil
}

type sensorDoc struct {
	ID         string  `bson:"id"`
	SensorID   string  `bson:"sensor_id"`
	SensorType string  `bson:"sensor_type"`
	Value      float64 `bson:"value"`
	Unit       string  `bson:"unit"`
	Location   string  `bson:"location"`
	Timestamp  string  `bson:"timestamp"`
}

func (s *MongoStore) InsertSensorData(ctx context.Context, data []domain.SensorData) error {
	if len(data) == 0 {
		return nil
	}

	docs := make([]sensorDoc, len(data))
	for i, d := range data {
		docs[i] = sensorDoc{
			ID:         d.ID,
			SensorID:   d.SensorID,
			SensorType: string(d.SensorType),
			Value:      d.Value,
			Unit:       d.Unit,
			Location:   d.Location,
			Timestamp:  domain.FormatTimestamp(d.Timestamp),
		}
	}

	opts := options.InsertMany().SetOrdered(false)
	if _, err := s.sensors.InsertMany(ctx, docs, opts); err != nil {
		return fmt.Errorf("insert %d sensor records: %w", len(data), err)
	}
	return nil
}

func (s *MongoStore) FindSensorData(ctx context.Context, limit int) ([]domain.SensorData, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetProjection(bson.M{"_id": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.sensors.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find sensor data: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []sensorDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sensor data: %w", err)
	}

	result := make([]domain.SensorData, 0, len(docs))
	for _, d := range docs {
		ts, err := domain.ParseTimestamp(d.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("sensor record %s: bad timestamp %q: %w", d.ID, d.Timestamp, err)
		}
		result = append(result, domain.SensorData{
			ID:         d.ID,
			SensorID:   d.SensorID,
			SensorType: domain.SensorType(d.SensorType),
			Value:      d.Value,
			Unit:       d.Unit,
			Location:   d.Location,
			Timestamp:  ts,
		})
	}
	return result, nil
}
