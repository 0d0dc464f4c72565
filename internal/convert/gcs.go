// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

// fetchFunc copies a remote PDF to a local temp file. The cleanup function
// removes it.
type fetchFunc func(ctx context.Context, uri string) (path string, cleanup func(), err error)

func isGCSURI(s string) bool {
	return strings.HasPrefix(s, gcsScheme)
}

// parseGCSURI splits gs://bucket/path/to/object into bucket and object.
func parseGCSURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, gcsScheme)
	if !ok {
		return "", "", fmt.Errorf("not a GCS URI: %q", uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("GCS URI must be gs://bucket/object: %q", uri)
	}
	return bucket, object, nil
}

// fetchGCS streams a Cloud Storage object to a temp file using
// application default credentials.
func fetchGCS(ctx context.Context, uri string) (string, func(), error) {
	bucket, object, err := parseGCSURI(uri)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("%w: creating storage client: %w", ErrExtraction, err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return "", nil, fmt.Errorf("%w: %s", ErrMissingFile, uri)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: reading %s: %w", ErrExtraction, uri, err)
	}
	defer r.Close()

	return copyToTemp(r)
}

// copyToTemp writes r to a new temp file, since ledongthuc/pdf needs a
// seekable file on disk. Failures, including a body cut short, wrap
// ErrExtraction.
func copyToTemp(r io.Reader) (string, func(), error) {
	tmp, err := os.CreateTemp("", "refcount-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("%w: create temp file: %w", ErrExtraction, err)
	}
	path := tmp.Name()
	cleanup := func() { os.Remove(path) }

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("%w: write temp file: %w", ErrExtraction, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%w: close temp file: %w", ErrExtraction, err)
	}
	return path, cleanup, nil
}
