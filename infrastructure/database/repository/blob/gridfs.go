package blob

import (
	"bytes"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"invigil.io/infrastructure/logger"
)

var (
	ErrUnboundBucket = errors.New("gridfs bucket is not bound, is the database connected?")
	ErrInvalidFileID = errors.New("invalid gridfs file id")
	ErrFileNotFound  = errors.New("file not found")
)

// GridFSRepository stores whole files in a gridfs bucket, addressed by the hex object id.
type GridFSRepository struct {
	Bucket *gridfs.Bucket
}

func NewGridFSRepository(bucket *gridfs.Bucket) *GridFSRepository {
	return &GridFSRepository{Bucket: bucket}
}

func (repo *GridFSRepository) ready() error {
	if repo.Bucket == nil {
		return ErrUnboundBucket
	}
	return nil
}

func (repo *GridFSRepository) Upload(_ context.Context, filename string, data []byte, metadata map[string]string) (string, error) {
	if err := repo.ready(); err != nil {
		return "", err
	}
	opts := options.GridFSUpload()
	if len(metadata) > 0 {
		opts.SetMetadata(metadata)
	}
	id, err := repo.Bucket.UploadFromStream(filename, bytes.NewReader(data), opts)
	if err != nil {
		logger.Error("gridfs upload failed", logger.LoggerOptions{Key: "filename", Data: filename}, logger.LoggerOptions{Key: "error", Data: err})
		return "", err
	}
	return id.Hex(), nil
}

func (repo *GridFSRepository) Download(_ context.Context, fileID string) ([]byte, error) {
	if err := repo.ready(); err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, ErrInvalidFileID
	}
	var buf bytes.Buffer
	if _, err := repo.Bucket.DownloadToStream(id, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		logger.Error("gridfs download failed", logger.LoggerOptions{Key: "fileID", Data: fileID}, logger.LoggerOptions{Key: "error", Data: err})
		return nil, err
	}
	return buf.Bytes(), nil
}

// Exists reports whether a file called filename is already stored.
func (repo *GridFSRepository) Exists(_ context.Context, filename string) (bool, error) {
	if err := repo.ready(); err != nil {
		return false, err
	}
	cursor, err := repo.Bucket.Find(bson.M{"filename": filename}, options.GridFSFind().SetLimit(1))
	if err != nil {
		return false, err
	}
	defer cursor.Close(context.Background())
	return cursor.Next(context.Background()), nil
}

func (repo *GridFSRepository) Delete(_ context.Context, fileID string) error {
	if err := repo.ready(); err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return ErrInvalidFileID
	}
	if err := repo.Bucket.Delete(id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return err
	}
	return nil
}
