// Package mongostore backs the catalog store with MongoDB. Numeric ids are
// drawn from a counters collection so documents keep the same id shape as
// the relational backends, and unique indexes on name and token make the
// duplicate checks race-safe.
package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"minimart/internal/domain"
	"minimart/internal/store"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func Open(ctx context.Context, cfg Config) (*Mongo, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	m := &Mongo{client: client, db: client.Database(cfg.Database)}
	if err := m.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	users := m.db.Collection("users")
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	return nil
}

func (m *Mongo) Users() store.UserStore {
	return &mongoUsers{coll: m.db.Collection("users"), counters: m.db.Collection("counters")}
}

func (m *Mongo) Products() store.ProductStore {
	return &mongoProducts{coll: m.db.Collection("products"), counters: m.db.Collection("counters")}
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// nextID increments and returns the named sequence. The findAndModify is
// atomic on the server, so ids never repeat across processes.
func nextID(ctx context.Context, counters *mongo.Collection, seq string) (int64, error) {
	var doc struct {
		Value int64 `bson:"value"`
	}
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": seq},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", seq, err)
	}
	return doc.Value, nil
}

type mongoUser struct {
	ID       int64  `bson:"_id"`
	Name     string `bson:"name"`
	Age      int    `bson:"age"`
	Password string `bson:"password"`
	Token    string `bson:"token"`
	Role     string `bson:"role"`
}

func (d mongoUser) toDomain() *domain.User {
	return &domain.User{ID: d.ID, Name: d.Name, Age: d.Age, Password: d.Password, Token: d.Token, Role: domain.Role(d.Role)}
}

type mongoUsers struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func (r *mongoUsers) Create(ctx context.Context, u *domain.User) error {
	id, err := nextID(ctx, r.counters, "users")
	if err != nil {
		return err
	}
	u.ID = id
	u.Token = store.NewToken()
	doc := mongoUser{ID: u.ID, Name: u.Name, Age: u.Age, Password: u.Password, Token: u.Token, Role: string(u.Role)}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicateName
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *mongoUsers) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var d mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return d.toDomain(), nil
}

func (r *mongoUsers) ByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUsers) ByToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"token": token})
}

func (r *mongoUsers) ByName(ctx context.Context, name string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *mongoUsers) list(ctx context.Context, sort bson.D) ([]domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	out := []domain.User{}
	for cur.Next(ctx) {
		var d mongoUser
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, *d.toDomain())
	}
	return out, cur.Err()
}

func (r *mongoUsers) List(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, bson.D{{Key: "_id", Value: 1}})
}

func (r *mongoUsers) ListByName(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, bson.D{{Key: "name", Value: 1}})
}

func (r *mongoUsers) Update(ctx context.Context, id int64, name string, age int) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": name, "age": age}})
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicateName
	}
	return err
}

func (r *mongoUsers) Delete(ctx context.Context, id int64) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoUsers) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *mongoUsers) HasRole(ctx context.Context, role domain.Role) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"role": string(role)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type mongoProduct struct {
	ID    int64  `bson:"_id"`
	Name  string `bson:"name"`
	Price int64  `bson:"price"`
}

type mongoProducts struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func (r *mongoProducts) Create(ctx context.Context, p *domain.Product) error {
	id, err := nextID(ctx, r.counters, "products")
	if err != nil {
		return err
	}
	p.ID = id
	if _, err := r.coll.InsertOne(ctx, mongoProduct{ID: p.ID, Name: p.Name, Price: p.Price}); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *mongoProducts) ByID(ctx context.Context, id int64) (*domain.Product, error) {
	var d mongoProduct
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &domain.Product{ID: d.ID, Name: d.Name, Price: d.Price}, nil
}

func (r *mongoProducts) find(ctx context.Context, filter bson.M) ([]domain.Product, error) {
	sort := bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cur.Close(ctx)

	out := []domain.Product{}
	for cur.Next(ctx) {
		var d mongoProduct
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, domain.Product{ID: d.ID, Name: d.Name, Price: d.Price})
	}
	return out, cur.Err()
}

func (r *mongoProducts) List(ctx context.Context) ([]domain.Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoProducts) SearchByName(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.List(ctx)
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return r.find(ctx, bson.M{"name": re})
}

func (r *mongoProducts) Update(ctx context.Context, id int64, name string, price int64) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": name, "price": price}})
	return err
}

func (r *mongoProducts) Delete(ctx context.Context, id int64) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoProducts) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
