package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer        = otel.Tracer("autopost/storage")
	singleAttempt sync.Once
)

// BlobOptions configures the S3-compatible uploader.
type BlobOptions struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Region        string
	Bucket        string
	PublicBaseURL string
}

// BlobStore uploads files to a pre-provisioned bucket and makes them publicly readable.
type BlobStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewBlobStore creates the client. Setting Region skips the bucket-location lookup.
func NewBlobStore(opts BlobOptions) (*BlobStore, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
	}
	if endpoint == "" {
		return nil, errors.New("storage: endpoint is required")
	}
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("storage: bucket is required")
	}
	// minio-go retries through a package-level budget; one attempt means uploads never retry.
	singleAttempt.Do(func() { minio.MaxRetry = 1 })
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	publicBase := strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/")
	if publicBase == "" {
		publicBase = strings.TrimRight(client.EndpointURL().String(), "/")
	}
	return &BlobStore{client: client, bucket: opts.Bucket, publicBaseURL: publicBase}, nil
}

// Bucket returns the destination bucket.
func (b *BlobStore) Bucket() string {
	return b.bucket
}

// PublicURL resolves the shareable URL of an object.
func (b *BlobStore) PublicURL(object string) string {
	return fmt.Sprintf("%s/%s/%s", b.publicBaseURL, b.bucket, url.PathEscape(object))
}

// Upload puts the local file under object with a public-read ACL and returns its public URL.
// The URL is only returned once the store has acknowledged the write.
func (b *BlobStore) Upload(ctx context.Context, localPath, object, contentType string) (string, error) {
	ctx, span := tracer.Start(ctx, "blob_upload", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("blob.bucket", b.bucket),
		attribute.String("blob.object", object),
	)

	info, err := b.client.FPutObject(ctx, b.bucket, object, localPath, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"x-amz-acl": "public-read"},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return "", fmt.Errorf("storage: upload %s: %w", object, err)
	}
	span.SetAttributes(attribute.Int64("blob.size", info.Size))
	return b.PublicURL(object), nil
}
