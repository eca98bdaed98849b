package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// CloudStorageClient is a Client backed by a Google Cloud Storage bucket.
type CloudStorageClient struct {
	BucketName string
	Client     *storage.Client
}

// NewCloudStorageClient creates a client using application default credentials.
func NewCloudStorageClient(ctx context.Context, bucketName string) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %w", err)
	}
	return &CloudStorageClient{
		BucketName: bucketName,
		Client:     client,
	}, nil
}

// UploadFile writes fileData to objectName.
func (c *CloudStorageClient) UploadFile(ctx context.Context, objectName string, fileData io.Reader) error {
	wc := c.Client.Bucket(c.BucketName).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(wc, fileData); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to write data to object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close object writer: %w", err)
	}
	return nil
}

// DownloadFile opens objectName for reading and returns its size.
func (c *CloudStorageClient) DownloadFile(ctx context.Context, objectName string) (io.ReadCloser, int64, error) {
	reader, err := c.Client.Bucket(c.BucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open object reader: %w", err)
	}
	return reader, reader.Attrs.Size, nil
}

// DeletePrefix removes every object whose name starts with prefix and returns how many
// were deleted.
func (c *CloudStorageClient) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	bucket := c.Client.Bucket(c.BucketName)
	it := bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	deleted := 0
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return deleted, nil
		}
		if err != nil {
			return deleted, fmt.Errorf("failed to list objects: %w", err)
		}
		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", attrs.Name, err)
		}
		deleted++
	}
}

// Close releases the underlying client.
func (c *CloudStorageClient) Close() error {
	return c.Client.Close()
}
