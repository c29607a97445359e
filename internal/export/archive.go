package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

// S3Client interface for S3 operations (allows mocking in tests)
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ErrArchiveDisabled is returned when no bucket or client is configured.
var ErrArchiveDisabled = errors.New("export: archive not configured")

// Archiver uploads CSV exports to S3.
type Archiver struct {
	s3     S3Client
	bucket string
	logger *logging.Logger
}

// ArchiverConfig holds configuration for the Archiver.
type ArchiverConfig struct {
	S3     S3Client
	Bucket string
	Logger *logging.Logger
}

// NewArchiver creates a new Archiver instance.
func NewArchiver(cfg ArchiverConfig) *Archiver {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Archiver{s3: cfg.S3, bucket: cfg.Bucket, logger: cfg.Logger}
}

// Enabled reports whether uploads can happen.
func (a *Archiver) Enabled() bool {
	return a != nil && a.s3 != nil && a.bucket != ""
}

// ArchiveResult describes an uploaded export.
type ArchiveResult struct {
	Bucket       string `json:"bucket"`
	Key          string `json:"key"`
	Rows         int    `json:"rows"`
	BytesWritten int64  `json:"bytesWritten"`
}

// Key returns the object key for an export generated at t.
func Key(fileName string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("exports/appointments/%d/%02d/%02d/%s", t.Year(), t.Month(), t.Day(), fileName)
}

// Archive uploads exp and returns where it landed.
func (a *Archiver) Archive(ctx context.Context, exp Export) (*ArchiveResult, error) {
	if !a.Enabled() {
		return nil, ErrArchiveDisabled
	}
	key := Key(exp.FileName, exp.GeneratedAt)
	_, err := a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(exp.Data),
		ContentType: aws.String(ContentType),
		Metadata: map[string]string{
			"row_count": strconv.Itoa(exp.Rows),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("export: s3 upload failed: %w", err)
	}

	a.logger.Info("export: archived appointments", "s3_key", key, "rows", exp.Rows)
	return &ArchiveResult{
		Bucket:       a.bucket,
		Key:          key,
		Rows:         exp.Rows,
		BytesWritten: int64(len(exp.Data)),
	}, nil
}
