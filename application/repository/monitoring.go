package repository

import (
	"sync"

	"invigil.io/entities"
	"invigil.io/infrastructure/database/connection/datastore"
	"invigil.io/infrastructure/database/repository/mongo"
)

var alertOnce = sync.Once{}

var alertRepository mongo.MongoRepository[entities.Alert]

func AlertRepo() *mongo.MongoRepository[entities.Alert] {
	alertOnce.Do(func() {
		alertRepository = mongo.MongoRepository[entities.Alert]{Model: datastore.AlertModel}
	})
	return &alertRepository
}

var monitoringLogOnce = sync.Once{}

var monitoringLogRepository mongo.MongoRepository[entities.MonitoringLog]

func MonitoringLogRepo() *mongo.MongoRepository[entities.MonitoringLog] {
	monitoringLogOnce.Do(func() {
		monitoringLogRepository = mongo.MongoRepository[entities.MonitoringLog]{Model: datastore.MonitoringLogModel}
	})
	return &monitoringLogRepository
}

var mouseMovementOnce = sync.Once{}

var mouseMovementRepository mongo.MongoRepository[entities.MouseMovement]

func MouseMovementRepo() *mongo.MongoRepository[entities.MouseMovement] {
	mouseMovementOnce.Do(func() {
		mouseMovementRepository = mongo.MongoRepository[entities.MouseMovement]{Model: datastore.MouseMovementModel}
	})
	return &mouseMovementRepository
}

var violationSnapshotOnce = sync.Once{}

var violationSnapshotRepository mongo.MongoRepository[entities.ViolationSnapshot]

func ViolationSnapshotRepo() *mongo.MongoRepository[entities.ViolationSnapshot] {
	violationSnapshotOnce.Do(func() {
		violationSnapshotRepository = mongo.MongoRepository[entities.ViolationSnapshot]{Model: datastore.ViolationSnapshotModel}
	})
	return &violationSnapshotRepository
}

var examSessionOnce = sync.Once{}

var examSessionRepository mongo.MongoRepository[entities.ExamSession]

func ExamSessionRepo() *mongo.MongoRepository[entities.ExamSession] {
	examSessionOnce.Do(func() {
		examSessionRepository = mongo.MongoRepository[entities.ExamSession]{Model: datastore.ExamSessionModel}
	})
	return &examSessionRepository
}
