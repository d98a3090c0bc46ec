package mongo

import (
	"go.mongodb.org/mongo-driver/mongo"
)

type BaseModel interface {
	ParseModel() any
}

type MongoRepository[T BaseModel] struct {
	Model *mongo.Collection
}

type FindOptions struct {
	Projection interface{}
	Sort       interface{}
	Skip       *int64
	Limit      *int64
}
