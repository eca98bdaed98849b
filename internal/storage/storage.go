// Package storage keeps uploaded files either in a Google Cloud Storage bucket or,
// when no bucket is configured, inline in the files table.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

// Object prefixes
const (
	ResumeObjectPrefix = "resumes"
)

// MaxResumeBytes is the largest resume accepted.
const MaxResumeBytes = 10 << 20

// Client is a remote object store.
type Client interface {
	UploadFile(ctx context.Context, objectName string, fileData io.Reader) error
	DownloadFile(ctx context.Context, objectName string) (io.ReadCloser, int64, error)
}

// Persist stores fileBytes through client and records where they went in file. A nil
// client keeps the bytes in the database row.
func Persist(ctx context.Context, client Client, file *model.File, fileBytes []byte, extension, prefix string) error {
	file.Extension = extension
	if client == nil {
		file.Content = fileBytes
		file.StorageObjectName = nil
		return nil
	}

	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), extension)
	if err := client.UploadFile(ctx, objectName, bytes.NewReader(fileBytes)); err != nil {
		return err
	}

	file.StorageObjectName = &objectName
	file.Content = nil
	return nil
}
