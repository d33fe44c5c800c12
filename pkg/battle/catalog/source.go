package catalog

import (
	"context"
	"os"
	"slices"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/argus-labs/warband/pkg/battle/types"
)

// Row is one stored template row.
type Row struct {
	TypeID           types.MatchTypeID `json:"id"                 bson:"id"                 redis:"id"`
	AllianceStartLoc uint32            `json:"alliance_start_loc" bson:"alliance_start_loc" redis:"alliance_start_loc"`
	HordeStartLoc    uint32            `json:"horde_start_loc"    bson:"horde_start_loc"    redis:"horde_start_loc"`
	MaxStartDistance float32           `json:"start_max_dist"     bson:"start_max_dist"     redis:"start_max_dist"`
	Weight           uint8             `json:"weight"             bson:"weight"             redis:"weight"`
	ScriptName       string            `json:"script_name"        bson:"script_name"        redis:"script_name"`
}

// RowSource supplies template rows at startup.
type RowSource interface {
	Rows(ctx context.Context) ([]Row, error)
}

// JSONFileSource reads rows from a JSON array file.
type JSONFileSource struct {
	Path string
}

var _ RowSource = JSONFileSource{}

func (s JSONFileSource) Rows(_ context.Context) ([]Row, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read template file: %s", s.Path)
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrapf(err, "failed to parse template file: %s", s.Path)
	}
	return rows, nil
}

func redisTemplateKey(id types.MatchTypeID) string {
	return "template:" + strconv.FormatUint(uint64(id), 10)
}

func redisTemplateSetKey() string {
	return "templates"
}

// RedisSource reads rows stored as hashes. The set "templates" lists the ids, and each row lives
// in the hash "template:<id>".
type RedisSource struct {
	client *redis.Client
}

var _ RowSource = (*RedisSource)(nil)

func NewRedisSource(client *redis.Client) *RedisSource {
	return &RedisSource{client: client}
}

// Put stores a row and adds it to the id set.
func (s *RedisSource) Put(ctx context.Context, row Row) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, redisTemplateKey(row.TypeID),
		"id", uint64(row.TypeID),
		"alliance_start_loc", row.AllianceStartLoc,
		"horde_start_loc", row.HordeStartLoc,
		"start_max_dist", row.MaxStartDistance,
		"weight", row.Weight,
		"script_name", row.ScriptName,
	)
	pipe.SAdd(ctx, redisTemplateSetKey(), uint64(row.TypeID))
	_, err := pipe.Exec(ctx)
	return eris.Wrapf(err, "failed to store template %d", row.TypeID)
}

// Rows returns the rows ordered by id. An id listed without a hash is skipped.
func (s *RedisSource) Rows(ctx context.Context) ([]Row, error) {
	members, err := s.client.SMembers(ctx, redisTemplateSetKey()).Result()
	if err != nil {
		return nil, eris.Wrap(err, "failed to list templates")
	}
	ids := make([]types.MatchTypeID, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 32)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid template id %q", m)
		}
		ids = append(ids, types.MatchTypeID(id))
	}
	slices.Sort(ids)

	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		cmd := s.client.HGetAll(ctx, redisTemplateKey(id))
		fields, err := cmd.Result()
		if err != nil {
			return nil, eris.Wrapf(err, "failed to read template %d", id)
		}
		if len(fields) == 0 {
			continue
		}
		var row Row
		if err := cmd.Scan(&row); err != nil {
			return nil, eris.Wrapf(err, "failed to decode template %d", id)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MongoCollection is the collection the Mongo source reads.
const MongoCollection = "battleground_template"

// MongoSource reads rows from a Mongo collection.
type MongoSource struct {
	coll *mongo.Collection
}

var _ RowSource = (*MongoSource)(nil)

func NewMongoSource(db *mongo.Database) *MongoSource {
	return &MongoSource{coll: db.Collection(MongoCollection)}
}

// Rows returns every document ordered by id.
func (s *MongoSource) Rows(ctx context.Context) ([]Row, error) {
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query templates")
	}
	var rows []Row
	if err := cur.All(ctx, &rows); err != nil {
		return nil, eris.Wrap(err, "failed to decode templates")
	}
	return rows, nil
}

// Insert stores rows. Used to seed a database from a JSON file.
func (s *MongoSource) Insert(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	docs := make([]any, len(rows))
	for i, r := range rows {
		docs[i] = r
	}
	_, err := s.coll.InsertMany(ctx, docs)
	return eris.Wrap(err, "failed to insert templates")
}
