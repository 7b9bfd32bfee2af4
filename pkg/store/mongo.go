package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// MongoConfig configures the MongoDB-backed layout store.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore persists layouts as documents in a MongoDB collection, one per
// project, keyed by project_id. The rooms array is stored exactly as the
// engine emits it; the surrounding project CRUD reads the same documents.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "floorplan"
	}
	if cfg.Collection == "" {
		cfg.Collection = "projects"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "project_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := coll.Indexes().CreateOne(ctx, idx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ensure project index")
	}

	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, projectID string, l plan.Layout) (err error) {
	start := time.Now()
	defer func() { observeSave(ctx, "mongo", projectID, len(l), start, err) }()

	if err = errors.ValidateProjectID(projectID); err != nil {
		return err
	}

	rec := Record{ProjectID: projectID, Rooms: l, UpdatedAt: time.Now()}
	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"project_id": projectID},
		rec,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save project %s", projectID)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, projectID string) (l plan.Layout, err error) {
	start := time.Now()
	defer func() { observeLoad(ctx, "mongo", projectID, start, err) }()

	if err = errors.ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	var rec Record
	err = s.coll.FindOne(ctx, bson.M{"project_id": projectID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeProjectNotFound, "no layout stored for project %s", projectID)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load project %s", projectID)
	}
	return rec.Rooms, nil
}

func (s *MongoStore) Delete(ctx context.Context, projectID string) error {
	if err := errors.ValidateProjectID(projectID); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"project_id": projectID}); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete project %s", projectID)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"project_id": 1}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list projects")
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			ProjectID string `bson:"project_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "decode project record")
		}
		ids = append(ids, doc.ProjectID)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "iterate projects")
	}
	return ids, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
