package fileupload

import (
	"invigil.io/infrastructure/file_upload/azure"
	"invigil.io/infrastructure/file_upload/disk"
	"invigil.io/infrastructure/file_upload/types"
	"invigil.io/infrastructure/logger"
)

type Options struct {
	AzureAccountName   string
	AzureAccountKey    string
	AzureContainerName string
	Dir                string
}

var SnapshotStore types.SnapshotStore

// InitialiseSnapshotStore prefers azure blob storage and falls back to a local directory.
// SnapshotStore stays nil when neither is configured.
func InitialiseSnapshotStore(opts Options) {
	if opts.AzureAccountName != "" && opts.AzureContainerName != "" {
		store := &azure.AzureBlobSnapshotStore{
			AccountName:   opts.AzureAccountName,
			AccountKey:    opts.AzureAccountKey,
			ContainerName: opts.AzureContainerName,
		}
		if err := store.Connect(); err == nil {
			SnapshotStore = store
			logger.Info("snapshots stored in azure blob storage", logger.LoggerOptions{Key: "container", Data: opts.AzureContainerName})
			return
		}
		logger.Warning("azure blob storage unavailable, falling back to local snapshots")
	}
	if opts.Dir != "" {
		SnapshotStore = &disk.DiskSnapshotStore{Dir: opts.Dir}
		logger.Info("snapshots stored on disk", logger.LoggerOptions{Key: "dir", Data: opts.Dir})
		return
	}
	logger.Warning("no snapshot store configured, evidence images are not kept")
}
