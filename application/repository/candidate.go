package repository

import (
	"sync"

	"invigil.io/entities"
	"invigil.io/infrastructure/database/connection/datastore"
	"invigil.io/infrastructure/database/repository/mongo"
)

var userOnce = sync.Once{}

var userRepository mongo.MongoRepository[entities.Candidate]

func UserRepo() *mongo.MongoRepository[entities.Candidate] {
	userOnce.Do(func() {
		userRepository = mongo.MongoRepository[entities.Candidate]{Model: datastore.UserModel}
	})
	return &userRepository
}

var userFrameOnce = sync.Once{}

var userFrameRepository mongo.MongoRepository[entities.UserFrame]

func UserFrameRepo() *mongo.MongoRepository[entities.UserFrame] {
	userFrameOnce.Do(func() {
		userFrameRepository = mongo.MongoRepository[entities.UserFrame]{Model: datastore.UserFrameModel}
	})
	return &userFrameRepository
}

var userArtifactOnce = sync.Once{}

var userArtifactRepository mongo.MongoRepository[entities.UserArtifact]

func UserArtifactRepo() *mongo.MongoRepository[entities.UserArtifact] {
	userArtifactOnce.Do(func() {
		userArtifactRepository = mongo.MongoRepository[entities.UserArtifact]{Model: datastore.UserArtifactModel}
	})
	return &userArtifactRepository
}
