package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	logx "github.com/ThePeze/BershkaStockMonitor/pkg/logx"
)

const mongoDocID = "monitor_state"

// mongoStore upserts the whole document under a fixed _id; the JSON shape
// on the wire matches the file driver so state can be migrated by hand.
type mongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    logx.Logger
}

type mongoDoc struct {
	ID        string `bson:"_id"`
	Doc       string `bson:"doc"`
	UpdatedAt int64  `bson:"updated_at"`
}

func openMongo(cfg Config, log logx.Logger) (Store, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, errors.New("state.uri is required for mongo driver")
	}
	dbName := strings.TrimSpace(cfg.Database)
	if dbName == "" {
		dbName = "stockmon"
	}
	collName := strings.TrimSpace(cfg.Collection)
	if collName == "" {
		collName = "monitor_state"
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &mongoStore{
		client: client,
		coll:   client.Database(dbName).Collection(collName),
		log:    log,
	}, nil
}

func (s *mongoStore) Load(ctx context.Context) (*Document, error) {
	var raw mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": mongoDocID}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NewDocument(), nil
	}
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw.Doc), &doc); err != nil {
		return nil, err
	}
	if doc.Products == nil {
		doc.Products = map[string]*ProductState{}
	}
	return &doc, nil
}

func (s *mongoStore) Save(ctx context.Context, doc *Document) error {
	if doc == nil {
		return errors.New("nil state document")
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"_id": mongoDocID},
		mongoDoc{ID: mongoDocID, Doc: string(b), UpdatedAt: time.Now().Unix()},
		options.Replace().SetUpsert(true))
	return err
}

func (s *mongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
