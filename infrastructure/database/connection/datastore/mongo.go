package datastore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"invigil.io/infrastructure/logger"
)

var (
	Client *mongo.Client

	UserModel              *mongo.Collection
	UserFrameModel         *mongo.Collection
	UserArtifactModel      *mongo.Collection
	AlertModel             *mongo.Collection
	MonitoringLogModel     *mongo.Collection
	MouseMovementModel     *mongo.Collection
	ViolationSnapshotModel *mongo.Collection
	ExamSessionModel       *mongo.Collection

	VideoBucket    *gridfs.Bucket
	ArtifactBucket *gridfs.Bucket
)

const (
	VideoBucketName    = "enrollment_videos"
	ArtifactBucketName = "models"
)

func ConnectMongo(url string, dbName string) error {
	if url == "" {
		logger.Error("mongo url missing")
		return errors.New("mongo url missing")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(url)
	clientOpts.SetMinPoolSize(5)
	clientOpts.SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Warning("an error occured while starting the database", logger.LoggerOptions{Key: "error", Data: err})
		return err
	}
	if err = client.Ping(ctx, nil); err != nil {
		logger.Warning("mongodb did not respond to ping", logger.LoggerOptions{Key: "error", Data: err})
		return err
	}
	Client = client

	if err = SetUpCollections(ctx, client.Database(dbName)); err != nil {
		return err
	}
	logger.Info("connected to mongodb successfully")
	return nil
}

// SetUpCollections binds the package level collections and buckets to db and creates their indexes.
func SetUpCollections(ctx context.Context, db *mongo.Database) error {
	UserModel = db.Collection("users")
	UserFrameModel = db.Collection("user_frames")
	UserArtifactModel = db.Collection("user_models")
	AlertModel = db.Collection("alerts")
	MonitoringLogModel = db.Collection("monitoring_logs")
	MouseMovementModel = db.Collection("mouse_movements")
	ViolationSnapshotModel = db.Collection("violation_snapshots")
	ExamSessionModel = db.Collection("exam_sessions")

	indexes := []struct {
		collection *mongo.Collection
		models     []mongo.IndexModel
	}{
		{UserModel, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}, {
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		}}},
		{UserFrameModel, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "userID", Value: 1}},
			Options: options.Index(),
		}}},
		{UserArtifactModel, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "userID", Value: 1}},
			Options: options.Index(),
		}}},
		{AlertModel, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "userID", Value: 1}, {Key: "sessionID", Value: 1}},
			Options: options.Index(),
		}}},
		{MonitoringLogModel, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "userID", Value: 1}, {Key: "sessionID", Value: 1}},
			Options: options.Index(),
		}}},
		{MouseMovementModel, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "sessionID", Value: 1}},
			Options: options.Index(),
		}}},
		{ViolationSnapshotModel, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "userID", Value: 1}},
			Options: options.Index(),
		}}},
		{ExamSessionModel, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}, {
			Keys:    bson.D{{Key: "userID", Value: 1}},
			Options: options.Index(),
		}}},
	}
	for _, index := range indexes {
		if _, err := index.collection.Indexes().CreateMany(ctx, index.models); err != nil {
			logger.Error("failed to create mongodb indexes", logger.LoggerOptions{Key: "collection", Data: index.collection.Name()}, logger.LoggerOptions{Key: "error", Data: err})
			return err
		}
	}

	var err error
	VideoBucket, err = gridfs.NewBucket(db, options.GridFSBucket().SetName(VideoBucketName))
	if err != nil {
		return err
	}
	ArtifactBucket, err = gridfs.NewBucket(db, options.GridFSBucket().SetName(ArtifactBucketName))
	if err != nil {
		return err
	}

	logger.Info("mongodb indexes set up successfully")
	return nil
}

func CleanUp() {
	if Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Client.Disconnect(ctx); err != nil {
		logger.Warning("failed to disconnect from mongodb", logger.LoggerOptions{Key: "error", Data: err})
	}
}
