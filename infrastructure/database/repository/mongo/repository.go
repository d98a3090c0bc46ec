package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"invigil.io/infrastructure/logger"
)

const queryTimeout = 15 * time.Second

var ErrUnboundCollection = errors.New("repository collection is not bound, is the database connected?")

func (repo *MongoRepository[T]) ready() error {
	if repo.Model == nil {
		return ErrUnboundCollection
	}
	return nil
}

func (repo *MongoRepository[T]) CreateOne(ctx context.Context, payload T) (*T, error) {
	if err := repo.ready(); err != nil {
		return nil, err
	}
	parsed := payload.ParseModel().(*T)
	c, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if _, err := repo.Model.InsertOne(c, parsed); err != nil {
		logger.Error("mongo error occured while running CreateOne", logger.LoggerOptions{Key: "collection", Data: repo.Model.Name()}, logger.LoggerOptions{Key: "error", Data: err})
		return nil, err
	}
	return parsed, nil
}

func (repo *MongoRepository[T]) CreateBulk(ctx context.Context, payload []T) (int, error) {
	if err := repo.ready(); err != nil {
		return 0, err
	}
	if len(payload) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(payload))
	for _, item := range payload {
		docs = append(docs, item.ParseModel())
	}
	c, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	result, err := repo.Model.InsertMany(c, docs)
	if err != nil {
		logger.Error("mongo error occured while running CreateBulk", logger.LoggerOptions{Key: "collection", Data: repo.Model.Name()}, logger.LoggerOptions{Key: "error", Data: err})
		return 0, err
	}
	return len(result.InsertedIDs), nil
}

// FindOneByFilter returns nil without an error when no document matches.
func (repo *MongoRepository[T]) FindOneByFilter(filter map[string]interface{}, opts ...*options.FindOneOptions) (*T, error) {
	if err := repo.ready(); err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	var result T
	err := repo.Model.FindOne(c, filter, opts...).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.Error("mongo error occured while running FindOneByFilter", logger.LoggerOptions{Key: "collection", Data: repo.Model.Name()}, logger.LoggerOptions{Key: "error", Data: err})
		return nil, err
	}
	return &result, nil
}

func (repo *MongoRepository[T]) FindMany(filter map[string]interface{}, opts ...FindOptions) (*[]T, error) {
	if err := repo.ready(); err != nil {
		return nil, err
	}
	findOpts := options.Find()
	for _, opt := range opts {
		if opt.Projection != nil {
			findOpts.SetProjection(opt.Projection)
		}
		if opt.Sort != nil {
			findOpts.SetSort(opt.Sort)
		}
		if opt.Skip != nil {
			findOpts.SetSkip(*opt.Skip)
		}
		if opt.Limit != nil {
			findOpts.SetLimit(*opt.Limit)
		}
	}
	c, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	cursor, err := repo.Model.Find(c, filter, findOpts)
	if err != nil {
		logger.Error("mongo error occured while running FindMany", logger.LoggerOptions{Key: "collection", Data: repo.Model.Name()}, logger.LoggerOptions{Key: "error", Data: err})
		return nil, err
	}
	result := []T{}
	if err = cursor.All(c, &result); err != nil {
		logger.Error("mongo error occured while decoding FindMany", logger.LoggerOptions{Key: "collection", Data: repo.Model.Name()}, logger.LoggerOptions{Key: "error", Data: err})
		return nil, err
	}
	return &result, nil
}

func (repo *MongoRepository[T]) UpdatePartialByFilter(filter map[string]interface{}, payload interface{}) (int64, error) {
	if err := repo.ready(); err != nil {
		return 0, err
	}
	c, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	result, err := repo.Model.UpdateOne(c, filter, map[string]interface{}{"$set": payload})
	if err != nil {
		logger.Error("mongo error occured while running UpdatePartialByFilter", logger.LoggerOptions{Key: "collection", Data: repo.Model.Name()}, logger.LoggerOptions{Key: "error", Data: err})
		return 0, err
	}
	return result.MatchedCount, nil
}

func (repo *MongoRepository[T]) CountDocs(filter map[string]interface{}) (int64, error) {
	if err := repo.ready(); err != nil {
		return 0, err
	}
	c, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	count, err := repo.Model.CountDocuments(c, filter)
	if err != nil {
		logger.Error("mongo error occured while running CountDocs", logger.LoggerOptions{Key: "collection", Data: repo.Model.Name()}, logger.LoggerOptions{Key: "error", Data: err})
		return 0, err
	}
	return count, nil
}

func (repo *MongoRepository[T]) DeleteByFilter(ctx context.Context, filter map[string]interface{}) (int64, error) {
	if err := repo.ready(); err != nil {
		return 0, err
	}
	c, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	result, err := repo.Model.DeleteMany(c, filter)
	if err != nil {
		logger.Error("mongo error occured while running DeleteByFilter", logger.LoggerOptions{Key: "collection", Data: repo.Model.Name()}, logger.LoggerOptions{Key: "error", Data: err})
		return 0, err
	}
	return result.DeletedCount, nil
}
