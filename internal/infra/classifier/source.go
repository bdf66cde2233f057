package classifier

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// defaultArtifact is a small hand-tuned development model.
//
//go:embed default_model.json
var defaultArtifact []byte

// Source yields the raw bytes of a model artifact.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
}

// Load reads an artifact from source and builds the model.
func Load(ctx context.Context, source Source) (*LogisticModel, error) {
	data, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// EmbeddedSource serves the built-in development artifact.
type EmbeddedSource struct{}

func (EmbeddedSource) Load(context.Context) ([]byte, error) {
	return append([]byte(nil), defaultArtifact...), nil
}

// FileSource reads an artifact from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Load(context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return data, nil
}

// maxArtifactBytes guards against pointing the loader at the wrong object.
const maxArtifactBytes = 16 << 20

// ObjectStorageSource reads an artifact from an S3-compatible bucket.
type ObjectStorageSource struct {
	client *minio.Client
	bucket string
	key    string
}

// NewObjectStorageSource constructs an S3-compatible source.
func NewObjectStorageSource(endpoint, accessKey, secretKey, region, bucket, key string) (*ObjectStorageSource, error) {
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &ObjectStorageSource{client: client, bucket: bucket, key: key}, nil
}

func (s *ObjectStorageSource) Load(ctx context.Context) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get model object %s/%s: %w", s.bucket, s.key, err)
	}
	defer obj.Close()
	info, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat model object %s/%s: %w", s.bucket, s.key, err)
	}
	if info.Size > maxArtifactBytes {
		return nil, fmt.Errorf("model object %s/%s is %d bytes, limit %d", s.bucket, s.key, info.Size, maxArtifactBytes)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read model object %s/%s: %w", s.bucket, s.key, err)
	}
	return data, nil
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
