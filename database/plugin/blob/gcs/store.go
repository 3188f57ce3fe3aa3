// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/blinklabs-io/leapfrog/database/plugin/blob/internal/objectstore"
	"github.com/blinklabs-io/leapfrog/database/types"
)

const dataDirScheme = "gcs://"

// BlobStoreGCS keeps account images and ledger balances as objects in a
// Google Cloud Storage bucket
type BlobStoreGCS struct {
	*objectstore.Store
	backend *gcsBackend
}

// gcsBackend implements objectstore.Backend
type gcsBackend struct {
	client          *storage.Client
	bucket          *storage.BucketHandle
	bucketName      string
	credentialsFile string
}

// New creates a store from a data dir of the form gcs://bucket
func New(dataDir string, opts ...BlobStoreGCSOptionFunc) (*BlobStoreGCS, error) {
	bucketName, ok := strings.CutPrefix(dataDir, dataDirScheme)
	if !ok || bucketName == "" {
		return nil, errors.New(
			"gcs blob: bucket not set (expected dataDir='gcs://<bucket>')",
		)
	}
	return NewWithOptions(append(opts, WithBucket(bucketName))...), nil
}

// NewWithOptions creates a store. The bucket is not contacted before Start.
func NewWithOptions(opts ...BlobStoreGCSOptionFunc) *BlobStoreGCS {
	d := &BlobStoreGCS{backend: &gcsBackend{}}
	d.Store = objectstore.New(d.backend)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func validateCredentials(credentialsFile string) error {
	if credentialsFile == "" {
		return nil
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(
				"GCS credentials file does not exist: %s",
				credentialsFile,
			)
		}
		return fmt.Errorf("GCS credentials file: %w", err)
	}
	return nil
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreGCS) Start() error {
	b := d.backend
	if b.client != nil {
		return nil
	}
	if b.bucketName == "" {
		return errors.New("gcs blob: bucket not set")
	}
	if err := validateCredentials(b.credentialsFile); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), objectstore.DefaultTimeout)
	defer cancel()
	clientOpts := []option.ClientOption{storage.WithDisabledClientMetrics()}
	if b.credentialsFile != "" {
		clientOpts = append(
			clientOpts,
			option.WithCredentialsFile(b.credentialsFile),
		)
	}
	client, err := storage.NewGRPCClient(ctx, clientOpts...)
	if err != nil {
		return fmt.Errorf(
			"gcs blob: failed in creating storage client: %w",
			err,
		)
	}
	b.client = client
	b.bucket = client.Bucket(b.bucketName)
	d.Init()
	d.Logger().Info(
		fmt.Sprintf("using GCS bucket %s", b.bucketName),
		"component", "database",
	)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreGCS) Stop() error {
	return d.Close()
}

// Close closes the GCS client
func (d *BlobStoreGCS) Close() error {
	b := d.backend
	if b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	b.bucket = nil
	return err
}

// Client returns the GCS client
func (d *BlobStoreGCS) Client() *storage.Client {
	return d.backend.client
}

// Bucket returns the bucket handle
func (d *BlobStoreGCS) Bucket() *storage.BucketHandle {
	return d.backend.bucket
}

func (b *gcsBackend) Get(ctx context.Context, name string) ([]byte, error) {
	if b.bucket == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	r, err := b.bucket.Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, objectstore.ErrObjectNotFound
		}
		return nil, fmt.Errorf("gcs get %s: %w", name, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (b *gcsBackend) Put(ctx context.Context, name string, data []byte) error {
	if b.bucket == nil {
		return types.ErrBlobStoreUnavailable
	}
	w := b.bucket.Object(name).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs put %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs put %s: %w", name, err)
	}
	return nil
}

func (b *gcsBackend) Delete(ctx context.Context, name string) error {
	if b.bucket == nil {
		return types.ErrBlobStoreUnavailable
	}
	if err := b.bucket.Object(name).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return objectstore.ErrObjectNotFound
		}
		return fmt.Errorf("gcs delete %s: %w", name, err)
	}
	return nil
}

func (b *gcsBackend) List(ctx context.Context, prefix string) ([]string, error) {
	if b.bucket == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	it := b.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list: %w", err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}
