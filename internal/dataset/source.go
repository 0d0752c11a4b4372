package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

const gcsScheme = "gs://"

// ObjectOpener reads objects from a bucket store such as GCS.
type ObjectOpener interface {
	OpenObject(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// Open resolves uri to a reader: gs://bucket/object goes through opener,
// anything else is a local path.
func Open(ctx context.Context, uri string, opener ObjectOpener) (io.ReadCloser, error) {
	if !IsRemote(uri) {
		f, err := os.Open(uri)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		return f, nil
	}

	bucket, object, err := splitGCSURI(uri)
	if err != nil {
		return nil, err
	}
	if opener == nil {
		return nil, fmt.Errorf("no object store configured for %s", uri)
	}
	return opener.OpenObject(ctx, bucket, object)
}

// LoadFrom opens uri and loads it.
func LoadFrom(ctx context.Context, uri string, opener ObjectOpener) (*Dataset, error) {
	rc, err := Open(ctx, uri, opener)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	ds, err := Load(rc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", uri, err)
	}
	return ds, nil
}

func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, gcsScheme)
}

func splitGCSURI(uri string) (string, string, error) {
	bucket, object, ok := strings.Cut(strings.TrimPrefix(uri, gcsScheme), "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid gcs uri %q: want gs://bucket/object", uri)
	}
	return bucket, object, nil
}
