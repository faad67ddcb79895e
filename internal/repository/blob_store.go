package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// firebaseBlobStore writes submissions into the Firebase Storage bucket
type firebaseBlobStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewBlobStore creates a BlobStore backed by a Cloud Storage bucket
func NewBlobStore(bucket *gcs.BucketHandle, bucketName string) BlobStore {
	return &firebaseBlobStore{
		bucket:     bucket,
		bucketName: bucketName,
	}
}

func (s *firebaseBlobStore) Put(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	token := uuid.NewString()

	writer := s.bucket.Object(path).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType
	writer.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}

	if _, err := io.Copy(writer, r); err != nil {
		writer.Close()
		return "", classify("upload submission", err)
	}
	if err := writer.Close(); err != nil {
		return "", classify("upload submission", err)
	}

	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		s.bucketName, url.PathEscape(path), token), nil
}

func (s *firebaseBlobStore) Delete(ctx context.Context, path string) error {
	err := s.bucket.Object(path).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return classify("delete submission", err)
}
