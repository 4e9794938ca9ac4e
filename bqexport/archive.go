package bqexport

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/skyvolume/airspace"
)

// Archiver copies KML input/output pairs to a cloud storage bucket
// alongside the BigQuery row export, so a run can be replayed later.
type Archiver struct {
	client *storage.Client
	bucket string
}

func NewArchiver(ctx context.Context, bucket string) (*Archiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, airspace.NewError(airspace.NetworkUnavailable, "open storage client", err)
	}
	return &Archiver{client: client, bucket: bucket}, nil
}

func (a *Archiver) Close() error { return a.client.Close() }

// Put uploads r under the given run-scoped object name.
func (a *Archiver) Put(ctx context.Context, runID, objectSuffix string, r io.Reader) error {
	name := fmt.Sprintf("%s/%s", runID, objectSuffix)
	w := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return airspace.NewError(airspace.NetworkUnavailable, "write archive object", err)
	}
	if err := w.Close(); err != nil {
		return airspace.NewError(airspace.NetworkUnavailable, "close archive object", err)
	}
	return nil
}
