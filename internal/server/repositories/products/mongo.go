package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding products.
const CollectionName = "products"

type MongoRepository struct {
	col *mongo.Collection
}

var _ Repository = (*MongoRepository)(nil)

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) List(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := r.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}

	list := make([]models.Product, 0)
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return list, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, common.ErrorNotFound
		}
		return models.Product{}, fmt.Errorf("mongo find one: %w", err)
	}
	return p, nil
}

func (r *MongoRepository) Upsert(ctx context.Context, p models.Product) error {
	_, err := r.col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

func (r *MongoRepository) Total(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$multiply", Value: bson.A{"$price", "$quantity"}},
			}}}},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("mongo aggregate: %w", err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		return 0, cur.Err()
	}

	var res struct {
		Total float64 `bson:"total"`
	}
	if err := cur.Decode(&res); err != nil {
		return 0, fmt.Errorf("mongo decode: %w", err)
	}
	return res.Total, nil
}
