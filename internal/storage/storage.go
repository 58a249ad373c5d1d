package storage

import (
	"context"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Service stores marker snapshots in remote object storage.
type Service interface {
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	PresignGet(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
