package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/airpen/airpen-backend/internal/logger"
)

// BucketService stores raw recording audio and returns a retrieval URL.
// Without GCS_BUCKET_NAME it degrades to synthesized placeholder URLs so the
// rest of the pipeline keeps working in environments with no bucket.
type BucketService interface {
	UploadRecording(ctx context.Context, fileName string, audio []byte) (string, error)
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucketName    string
	cdnDomain     string
}

type placeholderBucketService struct {
	log *logger.Logger
	now func() time.Time
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
	serviceLog := log.With("service", "BucketService")

	bucket := os.Getenv("GCS_BUCKET_NAME")
	if bucket == "" {
		serviceLog.Warn("GCS_BUCKET_NAME not set; recordings get placeholder storage URLs")
		return &placeholderBucketService{log: serviceLog, now: time.Now}, nil
	}
	cdnDomain := os.Getenv("CDN_DOMAIN")

	saPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")
	ctx := context.Background()
	var stClient *storage.Client
	var err error
	if saPath != "" {
		stClient, err = storage.NewClient(ctx, option.WithCredentialsFile(saPath), option.WithScopes(storage.ScopeReadWrite))
	} else {
		stClient, err = storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		bucketName:    bucket,
		cdnDomain:     cdnDomain,
	}, nil
}

func (bs *bucketService) UploadRecording(ctx context.Context, fileName string, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	key := fmt.Sprintf("recordings/%s-%d.wav", fileName, time.Now().UnixMilli())
	w := bs.storageClient.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, bytes.NewReader(audio)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write audio to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	if bs.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", bs.cdnDomain, key), nil
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key), nil
}

func (ps *placeholderBucketService) UploadRecording(ctx context.Context, fileName string, audio []byte) (string, error) {
	ps.log.Debug("Synthesizing storage URL for recording", "fileName", fileName, "bytes", len(audio))
	return fmt.Sprintf("https://storage.example.com/recordings/%s-%d.wav", fileName, ps.now().UnixMilli()), nil
}
