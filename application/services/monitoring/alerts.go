package monitoring

import (
	"context"
	"fmt"
	"net/http"

	"invigil.io/application/constants"
	"invigil.io/application/utils"
	"invigil.io/entities"
	"invigil.io/infrastructure/logger"
)

// AlertRecorder persists raised alerts with their evidence and escalates critical ones.
type AlertRecorder struct {
	store     AlertStore
	snapshots SnapshotStore
	notifier  Notifier
	metrics   *Metrics
}

func NewAlertRecorder(store AlertStore, snapshots SnapshotStore, notifier Notifier, metrics *Metrics) *AlertRecorder {
	return &AlertRecorder{store: store, snapshots: snapshots, notifier: notifier, metrics: metrics}
}

// Record saves alert. Non-empty evidence is uploaded and linked from the alert; failing
// to store evidence or to notify does not fail the alert.
func (r *AlertRecorder) Record(ctx context.Context, alert entities.Alert, evidence []byte) (*entities.Alert, error) {
	if alert.ID == "" {
		alert.ID = utils.GenerateUULDString()
	}
	if len(evidence) > 0 && r.snapshots != nil {
		r.attachSnapshot(ctx, &alert, evidence)
	}

	saved, err := r.store.SaveAlert(ctx, alert)
	if err != nil {
		return nil, err
	}
	r.metrics.alertRaised(ctx, saved.Type)

	if saved.Severity == constants.SeverityCritical && r.notifier != nil {
		if err := r.notifier.NotifyCritical(ctx, *saved); err != nil {
			logger.Error("failed to queue proctor notification", logger.LoggerOptions{Key: "alertID", Data: saved.ID}, logger.LoggerOptions{Key: "error", Data: err})
		}
	}
	return saved, nil
}

// attachSnapshot links alert to its evidence only once both the upload and the snapshot record succeed.
func (r *AlertRecorder) attachSnapshot(ctx context.Context, alert *entities.Alert, evidence []byte) {
	scope := alert.UserID
	if scope == "" {
		scope = constants.ANONYMOUS_SCOPE
	}
	contentType := http.DetectContentType(evidence)
	extension := "jpg"
	if contentType == "image/png" {
		extension = "png"
	}
	name := fmt.Sprintf("%s/%s_%s.%s", scope, alert.Type, alert.ID, extension)
	location, err := r.snapshots.Upload(ctx, name, evidence, contentType)
	if err != nil {
		logger.Error("failed to upload violation snapshot", logger.LoggerOptions{Key: "alertType", Data: alert.Type}, logger.LoggerOptions{Key: "error", Data: err})
		return
	}
	snapshot := entities.ViolationSnapshot{
		ID:        utils.GenerateUULDString(),
		UserID:    alert.UserID,
		SessionID: alert.SessionID,
		AlertID:   alert.ID,
		AlertType: alert.Type,
		Location:  location,
	}
	if err := r.store.SaveSnapshot(ctx, snapshot); err != nil {
		logger.Error("failed to record violation snapshot", logger.LoggerOptions{Key: "alertID", Data: alert.ID}, logger.LoggerOptions{Key: "error", Data: err})
		return
	}
	alert.SnapshotID = &snapshot.ID
}
