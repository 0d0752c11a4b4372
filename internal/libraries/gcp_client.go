package libraries

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var ErrNoCredentials = errors.New("GCP_SERVICE_ACCOUNT_CREDENTIALS not set")

type Clients struct {
	GCS *storage.Client
}

// DecodeServiceAccount decodes the base64 encoded service account JSON.
func DecodeServiceAccount(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, ErrNoCredentials
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode service account json: %w", err)
	}
	return decoded, nil
}

func NewClients(ctx context.Context, encodedCredentials string) (*Clients, error) {
	decoded, err := DecodeServiceAccount(encodedCredentials)
	if err != nil {
		return nil, err
	}

	gcsClient, err := storage.NewClient(ctx, option.WithCredentialsJSON(decoded))
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}

	return &Clients{GCS: gcsClient}, nil
}

// OpenObject opens gs://bucket/object for reading.
func (c *Clients) OpenObject(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	r, err := c.GCS.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", bucket, object, err)
	}
	return r, nil
}

func (c *Clients) Close() {
	c.GCS.Close()
}
