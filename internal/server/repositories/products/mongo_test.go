package products

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func productDoc(p models.Product) bson.D {
	return bson.D{
		{Key: "_id", Value: p.ID},
		{Key: "code", Value: p.Code},
		{Key: "name", Value: p.Name},
		{Key: "price", Value: p.Price},
		{Key: "quantity", Value: p.Quantity},
	}
}

func TestMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	widget := models.Product{ID: "p1", Code: 1, Name: "Widget", Price: 9.99, Quantity: 7}
	bolt := models.Product{ID: "p2", Code: 2, Name: "Bolt", Price: 0.5, Quantity: 10}

	mt.Run("list", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, productDoc(widget), productDoc(bolt)))

		got, err := NewMongoRepository(mt.Coll).List(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []models.Product{widget, bolt}, got)
	})

	mt.Run("get found", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, productDoc(widget)))

		got, err := NewMongoRepository(mt.Coll).Get(context.Background(), "p1")
		require.NoError(mt, err)
		assert.Equal(mt, widget, got)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewMongoRepository(mt.Coll).Get(context.Background(), "nope")
		require.ErrorIs(mt, err, common.ErrorNotFound)
	})

	mt.Run("upsert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}))

		require.NoError(mt, NewMongoRepository(mt.Coll).Upsert(context.Background(), widget))
	})

	mt.Run("upsert error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Message: "duplicate"}))

		require.Error(mt, NewMongoRepository(mt.Coll).Upsert(context.Background(), widget))
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		require.NoError(mt, NewMongoRepository(mt.Coll).Delete(context.Background(), "ghost"))
	})

	mt.Run("total", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "_id", Value: nil}, {Key: "total", Value: 74.93}}))

		total, err := NewMongoRepository(mt.Coll).Total(context.Background())
		require.NoError(mt, err)
		assert.InDelta(mt, 74.93, total, 1e-9)
	})

	mt.Run("total of empty collection", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		total, err := NewMongoRepository(mt.Coll).Total(context.Background())
		require.NoError(mt, err)
		assert.Zero(mt, total)
	})
}
