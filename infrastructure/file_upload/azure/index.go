package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"invigil.io/infrastructure/logger"
)

type AzureBlobSnapshotStore struct {
	AccountName   string
	ContainerName string
	AccountKey    string
	// ServiceURL overrides the public endpoint, e.g. for azurite.
	ServiceURL string

	client *azblob.Client
}

func (store *AzureBlobSnapshotStore) Connect() error {
	credential, err := azblob.NewSharedKeyCredential(store.AccountName, store.AccountKey)
	if err != nil {
		logger.Error("error generated azblob shared key credential", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	serviceURL := store.ServiceURL
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net/", store.AccountName)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		logger.Error("error creating azblob client", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	store.client = client
	return nil
}

func (store *AzureBlobSnapshotStore) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := store.client.UploadBuffer(ctx, store.ContainerName, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		logger.Error("error uploading snapshot to azure", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "name",
			Data: name,
		})
		return "", err
	}
	return store.blobClient(name).URL(), nil
}

func (store *AzureBlobSnapshotStore) Delete(ctx context.Context, name string) error {
	_, err := store.client.DeleteBlob(ctx, store.ContainerName, name, nil)
	if err != nil {
		logger.Error("error deleting snapshot from azure", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	return nil
}

func (store *AzureBlobSnapshotStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := store.blobClient(name).GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (store *AzureBlobSnapshotStore) blobClient(name string) *blob.Client {
	return store.client.ServiceClient().NewContainerClient(store.ContainerName).NewBlobClient(name)
}
