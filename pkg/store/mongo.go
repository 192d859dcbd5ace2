package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/worktime/pkg/errors"
)

const (
	collCounters    = "counters"
	collEras        = "eras"
	collPeriods     = "periods"
	collTotals      = "totals"
	collAdjustments = "adjustments"
	collSettings    = "settings"
)

// MongoStore implements Store using MongoDB. Integer ids are allocated from
// a counters collection so that both backends expose the same ids.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = (*MongoStore)(nil)

type eraDoc struct {
	ID          int64     `bson:"_id"`
	Description string    `bson:"description"`
	Current     bool      `bson:"current"`
	Created     time.Time `bson:"created"`
}

type periodDoc struct {
	ID    int64      `bson:"_id"`
	EraID int64      `bson:"era"`
	Mode  string     `bson:"mode"`
	Start time.Time  `bson:"start"`
	End   *time.Time `bson:"end"`
}

type adjustmentDoc struct {
	ID      int64     `bson:"_id"`
	EraID   int64     `bson:"era"`
	Mode    string    `bson:"mode"`
	DeltaMS int64     `bson:"delta_ms"`
	At      time.Time `bson:"at"`
}

// NewMongoStore connects to uri and uses the named database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, storageErr(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storageErr(err, "ping mongo")
	}
	s := &MongoStore{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	indexes := map[string]mongo.IndexModel{
		collPeriods:     {Keys: bson.D{{Key: "era", Value: 1}, {Key: "start", Value: 1}}},
		collAdjustments: {Keys: bson.D{{Key: "era", Value: 1}, {Key: "at", Value: 1}}},
		collTotals: {
			Keys:    bson.D{{Key: "era", Value: 1}, {Key: "mode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	for coll, model := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return storageErr(err, "create %s index", coll)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes the whole database. Used by tests.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func (s *MongoStore) nextID(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(collCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, storageErr(err, "allocate %s id", name)
	}
	return doc.Seq, nil
}

// =============================================================================
// Eras
// =============================================================================

func (s *MongoStore) CurrentEra(ctx context.Context) (*Era, error) {
	var doc eraDoc
	err := s.db.Collection(collEras).FindOne(ctx,
		bson.M{"current": true},
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}}),
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeEraNotFound, "no current era")
	}
	if err != nil {
		return nil, storageErr(err, "get current era")
	}
	return doc.era(), nil
}

func (s *MongoStore) CreateEra(ctx context.Context, description string, created time.Time) (*Era, error) {
	id, err := s.nextID(ctx, collEras)
	if err != nil {
		return nil, err
	}
	eras := s.db.Collection(collEras)
	if _, err := eras.UpdateMany(ctx, bson.M{"current": true}, bson.M{"$set": bson.M{"current": false}}); err != nil {
		return nil, storageErr(err, "archive eras")
	}
	doc := eraDoc{ID: id, Description: description, Current: true, Created: fromMillis(created.UnixMilli())}
	if _, err := eras.InsertOne(ctx, doc); err != nil {
		return nil, storageErr(err, "insert era")
	}
	return doc.era(), nil
}

func (s *MongoStore) SetCurrentEra(ctx context.Context, id int64) error {
	eras := s.db.Collection(collEras)
	n, err := eras.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return storageErr(err, "look up era %d", id)
	}
	if n == 0 {
		return eraNotFound(id)
	}
	if _, err := eras.UpdateMany(ctx, bson.M{"_id": bson.M{"$ne": id}}, bson.M{"$set": bson.M{"current": false}}); err != nil {
		return storageErr(err, "archive eras")
	}
	if _, err := eras.UpdateByID(ctx, id, bson.M{"$set": bson.M{"current": true}}); err != nil {
		return storageErr(err, "switch era")
	}
	return nil
}

func (s *MongoStore) ListEras(ctx context.Context) ([]Era, error) {
	cur, err := s.db.Collection(collEras).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storageErr(err, "list eras")
	}
	var docs []eraDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr(err, "decode eras")
	}
	var eras []Era
	for _, d := range docs {
		eras = append(eras, *d.era())
	}
	return eras, nil
}

func (d eraDoc) era() *Era {
	return &Era{ID: d.ID, Description: d.Description, Current: d.Current, Created: d.Created.UTC()}
}

// =============================================================================
// Periods
// =============================================================================

func (s *MongoStore) OpenPeriod(ctx context.Context, eraID int64) (*Period, error) {
	var doc periodDoc
	err := s.db.Collection(collPeriods).FindOne(ctx,
		bson.M{"era": eraID, "end": nil},
		options.FindOne().SetSort(bson.D{{Key: "start", Value: -1}, {Key: "_id", Value: -1}}),
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err, "get open period")
	}
	return doc.period(), nil
}

func (s *MongoStore) StartPeriod(ctx context.Context, eraID int64, mode string, start time.Time) (*Period, error) {
	id, err := s.nextID(ctx, collPeriods)
	if err != nil {
		return nil, err
	}
	doc := periodDoc{ID: id, EraID: eraID, Mode: mode, Start: fromMillis(start.UnixMilli())}
	if _, err := s.db.Collection(collPeriods).InsertOne(ctx, doc); err != nil {
		return nil, storageErr(err, "start period")
	}
	return doc.period(), nil
}

func (s *MongoStore) EndPeriod(ctx context.Context, id int64, end time.Time) error {
	res, err := s.db.Collection(collPeriods).UpdateByID(ctx, id,
		bson.M{"$set": bson.M{"end": fromMillis(end.UnixMilli())}})
	if err != nil {
		return storageErr(err, "end period %d", id)
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "period %d not found", id)
	}
	return nil
}

func (s *MongoStore) MovePeriod(ctx context.Context, id, eraID int64) error {
	res, err := s.db.Collection(collPeriods).UpdateByID(ctx, id, bson.M{"$set": bson.M{"era": eraID}})
	if err != nil {
		return storageErr(err, "move period %d", id)
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "period %d not found", id)
	}
	return nil
}

func (s *MongoStore) PeriodsSince(ctx context.Context, eraID int64, since time.Time) ([]Period, error) {
	filter := bson.M{
		"era": eraID,
		"$or": bson.A{
			bson.M{"end": nil},
			bson.M{"end": bson.M{"$gt": fromMillis(since.UnixMilli())}},
		},
	}
	cur, err := s.db.Collection(collPeriods).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storageErr(err, "list periods")
	}
	var docs []periodDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr(err, "decode periods")
	}
	var periods []Period
	for _, d := range docs {
		periods = append(periods, *d.period())
	}
	return periods, nil
}

func (d periodDoc) period() *Period {
	p := &Period{ID: d.ID, EraID: d.EraID, Mode: d.Mode, Start: d.Start.UTC()}
	if d.End != nil {
		p.End = d.End.UTC()
	}
	return p
}

// =============================================================================
// Totals and adjustments
// =============================================================================

func (s *MongoStore) AddElapsed(ctx context.Context, eraID int64, mode string, delta time.Duration) (time.Duration, error) {
	// Pipeline update so the clamp happens atomically on the server.
	sum := bson.D{{Key: "$add", Value: bson.A{
		bson.D{{Key: "$ifNull", Value: bson.A{"$elapsed_ms", int64(0)}}},
		delta.Milliseconds(),
	}}}
	clamped := bson.D{{Key: "$max", Value: bson.A{int64(0), sum}}}
	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{{Key: "elapsed_ms", Value: clamped}}}}}

	var doc struct {
		ElapsedMS int64 `bson:"elapsed_ms"`
	}
	err := s.db.Collection(collTotals).FindOneAndUpdate(ctx,
		bson.M{"era": eraID, "mode": mode},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, storageErr(err, "update total %s", mode)
	}
	return time.Duration(doc.ElapsedMS) * time.Millisecond, nil
}

func (s *MongoStore) Totals(ctx context.Context, eraID int64) (map[string]time.Duration, error) {
	cur, err := s.db.Collection(collTotals).Find(ctx, bson.M{"era": eraID})
	if err != nil {
		return nil, storageErr(err, "list totals")
	}
	var docs []struct {
		Mode      string `bson:"mode"`
		ElapsedMS int64  `bson:"elapsed_ms"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr(err, "decode totals")
	}
	totals := make(map[string]time.Duration, len(docs))
	for _, d := range docs {
		totals[d.Mode] = time.Duration(d.ElapsedMS) * time.Millisecond
	}
	return totals, nil
}

func (s *MongoStore) AddAdjustment(ctx context.Context, adj Adjustment) (*Adjustment, error) {
	id, err := s.nextID(ctx, collAdjustments)
	if err != nil {
		return nil, err
	}
	doc := adjustmentDoc{
		ID:      id,
		EraID:   adj.EraID,
		Mode:    adj.Mode,
		DeltaMS: adj.Delta.Milliseconds(),
		At:      fromMillis(adj.Timestamp.UnixMilli()),
	}
	if _, err := s.db.Collection(collAdjustments).InsertOne(ctx, doc); err != nil {
		return nil, storageErr(err, "insert adjustment")
	}
	return doc.adjustment(), nil
}

func (s *MongoStore) AdjustmentsSince(ctx context.Context, eraID int64, since time.Time) ([]Adjustment, error) {
	cur, err := s.db.Collection(collAdjustments).Find(ctx,
		bson.M{"era": eraID, "at": bson.M{"$gte": fromMillis(since.UnixMilli())}},
		options.Find().SetSort(bson.D{{Key: "at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storageErr(err, "list adjustments")
	}
	var docs []adjustmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr(err, "decode adjustments")
	}
	var adjs []Adjustment
	for _, d := range docs {
		adjs = append(adjs, *d.adjustment())
	}
	return adjs, nil
}

func (d adjustmentDoc) adjustment() *Adjustment {
	return &Adjustment{
		ID:        d.ID,
		EraID:     d.EraID,
		Mode:      d.Mode,
		Delta:     time.Duration(d.DeltaMS) * time.Millisecond,
		Timestamp: d.At.UTC(),
	}
}

// =============================================================================
// Settings
// =============================================================================

func (s *MongoStore) Settings(ctx context.Context) (map[string]bool, error) {
	cur, err := s.db.Collection(collSettings).Find(ctx, bson.M{})
	if err != nil {
		return nil, storageErr(err, "list settings")
	}
	var docs []struct {
		Name  string `bson:"_id"`
		Value bool   `bson:"value"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr(err, "decode settings")
	}
	settings := make(map[string]bool, len(docs))
	for _, d := range docs {
		settings[d.Name] = d.Value
	}
	return settings, nil
}

func (s *MongoStore) SetSetting(ctx context.Context, name string, value bool) error {
	_, err := s.db.Collection(collSettings).UpdateByID(ctx, name,
		bson.M{"$set": bson.M{"value": value}},
		options.Update().SetUpsert(true))
	if err != nil {
		return storageErr(err, "set %s", name)
	}
	return nil
}
