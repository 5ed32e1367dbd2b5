package datasource

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/askiada/netsec-pipeline/internal/frame"
	"github.com/askiada/netsec-pipeline/internal/logging"
)

// IDField is the document identifier, never part of the dataset.
const IDField = "_id"

// MongoSource reads every document of a collection.
type MongoSource struct {
	URI        string
	Database   string
	Collection string
}

func (s MongoSource) Fetch(ctx context.Context) (*frame.Table, error) {
	logger := logging.New("datasource")

	client, err := connect(ctx, s.URI)
	if err != nil {
		return nil, err
	}
	defer disconnect(ctx, client)

	coll := client.Database(s.Database).Collection(s.Collection)
	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to query %s.%s", s.Database, s.Collection)
	}
	defer cur.Close(ctx)

	var docs []bson.D
	for cur.Next(ctx) {
		var doc bson.D
		err = cur.Decode(&doc)
		if err != nil {
			return nil, errors.Wrap(err, "unable to decode document")
		}
		docs = append(docs, doc)
	}
	err = cur.Err()
	if err != nil {
		return nil, errors.Wrap(err, "cursor failed")
	}

	logger.Info("fetched documents", "database", s.Database, "collection", s.Collection, "count", len(docs))

	return TableFromDocuments(docs)
}

// MongoSink inserts table rows into a collection.
type MongoSink struct {
	URI        string
	Database   string
	Collection string
}

// Push inserts one document per row and returns the number of inserted documents.
func (s MongoSink) Push(ctx context.Context, t *frame.Table) (int, error) {
	docs := DocumentsFromTable(t)
	if len(docs) == 0 {
		return 0, nil
	}

	client, err := connect(ctx, s.URI)
	if err != nil {
		return 0, err
	}
	defer disconnect(ctx, client)

	res, err := client.Database(s.Database).Collection(s.Collection).InsertMany(ctx, docs)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to insert into %s.%s", s.Database, s.Collection)
	}

	logging.New("datasource").Info("pushed documents", "database", s.Database, "collection", s.Collection, "count", len(res.InsertedIDs))

	return len(res.InsertedIDs), nil
}

func connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo uri must be set")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to mongo")
	}

	return client, nil
}

func disconnect(ctx context.Context, client *mongo.Client) {
	err := client.Disconnect(ctx)
	if err != nil {
		logging.New("datasource").Warn("unable to disconnect from mongo", "error", err)
	}
}

// TableFromDocuments converts documents into a table. Columns are the union of the document
// fields in first-seen order; absent fields are missing values. The _id field is skipped.
func TableFromDocuments(docs []bson.D) (*frame.Table, error) {
	index := make(map[string]int)
	var columns []string
	for _, doc := range docs {
		for _, e := range doc {
			if e.Key == IDField {
				continue
			}
			if _, ok := index[e.Key]; !ok {
				index[e.Key] = len(columns)
				columns = append(columns, e.Key)
			}
		}
	}

	rows := make([][]float64, len(docs))
	for i, doc := range docs {
		row := make([]float64, len(columns))
		for j := range row {
			row[j] = math.NaN()
		}
		for _, e := range doc {
			if e.Key == IDField {
				continue
			}
			v, err := toFloat(e.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "document %d field %q", i, e.Key)
			}
			row[index[e.Key]] = v
		}
		rows[i] = row
	}

	return frame.New(columns, rows)
}

// DocumentsFromTable converts rows into documents keeping the column order. Missing values are
// stored as null.
func DocumentsFromTable(t *frame.Table) []interface{} {
	docs := make([]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		doc := make(bson.D, len(t.Columns))
		for j, col := range t.Columns {
			var v interface{} = row[j]
			if math.IsNaN(row[j]) {
				v = nil
			} else if row[j] == math.Trunc(row[j]) && math.Abs(row[j]) < 1<<53 {
				v = int64(row[j])
			}
			doc[j] = bson.E{Key: col, Value: v}
		}
		docs[i] = doc
	}

	return docs
}

func toFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case nil:
		return math.NaN(), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case float64:
		return val, nil
	case bool:
		if val {
			return 1, nil
		}

		return 0, nil
	case string:
		return frame.ParseValue(val)
	default:
		return 0, errors.Errorf("unsupported value type %T", v)
	}
}
