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

package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/blinklabs-io/leapfrog/database/plugin/blob/internal/objectstore"
	"github.com/blinklabs-io/leapfrog/database/types"
)

const dataDirScheme = "s3://"

// BlobStoreS3 keeps account images and ledger balances as objects in an S3
// bucket
type BlobStoreS3 struct {
	*objectstore.Store
	backend *s3Backend
}

// s3Backend implements objectstore.Backend
type s3Backend struct {
	client   *s3.Client
	bucket   string
	prefix   string
	region   string
	endpoint string
}

// New creates a store from a data dir of the form s3://bucket[/prefix]
func New(dataDir string, opts ...BlobStoreS3OptionFunc) (*BlobStoreS3, error) {
	bucket, prefix, err := parseDataDir(dataDir)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(
		append([]BlobStoreS3OptionFunc{WithBucket(bucket), WithPrefix(prefix)}, opts...)...,
	), nil
}

// NewWithOptions creates a store. The bucket is not contacted before Start.
func NewWithOptions(opts ...BlobStoreS3OptionFunc) *BlobStoreS3 {
	d := &BlobStoreS3{backend: &s3Backend{}}
	d.Store = objectstore.New(d.backend)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func parseDataDir(dataDir string) (bucket, prefix string, err error) {
	path, ok := strings.CutPrefix(dataDir, dataDirScheme)
	if !ok {
		return "", "", errors.New(
			"s3 blob: expected dataDir='s3://<bucket>[/prefix]'",
		)
	}
	bucket, prefix, _ = strings.Cut(path, "/")
	if bucket == "" {
		return "", "", errors.New("s3 blob: invalid S3 path (missing bucket)")
	}
	return bucket, normalizePrefix(prefix), nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreS3) Start() error {
	b := d.backend
	if b.client != nil {
		return nil
	}
	if b.bucket == "" {
		return errors.New("s3 blob: bucket not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), objectstore.DefaultTimeout)
	defer cancel()
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("s3 blob: load default AWS config: %w", err)
	}
	if b.region != "" {
		awsCfg.Region = b.region
	}
	b.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if b.endpoint != "" {
			// Custom endpoints such as minio need path style addressing
			o.BaseEndpoint = aws.String(b.endpoint)
			o.UsePathStyle = true
		}
	})
	d.Init()
	d.Logger().Info(
		fmt.Sprintf("using S3 bucket %s", b.bucket),
		"component", "database",
		"prefix", b.prefix,
	)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreS3) Stop() error {
	return d.Close()
}

// Close drops the client. The S3 client holds no resources of its own.
func (d *BlobStoreS3) Close() error {
	d.backend.client = nil
	return nil
}

// Client returns the S3 client
func (d *BlobStoreS3) Client() *s3.Client {
	return d.backend.client
}

// Bucket returns the bucket name
func (d *BlobStoreS3) Bucket() string {
	return d.backend.bucket
}

func (d *s3Backend) fullKey(name string) string {
	return d.prefix + name
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return true
	}
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &noSuchKey)
}

// Get implements objectstore.Backend
func (d *s3Backend) Get(ctx context.Context, name string) ([]byte, error) {
	if d.client == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.fullKey(name)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, objectstore.ErrObjectNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", name, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// Put implements objectstore.Backend
func (d *s3Backend) Put(ctx context.Context, name string, data []byte) error {
	if d.client == nil {
		return types.ErrBlobStoreUnavailable
	}
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.fullKey(name)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", name, err)
	}
	return nil
}

// Delete implements objectstore.Backend. S3 deletes are idempotent.
func (d *s3Backend) Delete(ctx context.Context, name string) error {
	if d.client == nil {
		return types.ErrBlobStoreUnavailable
	}
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.fullKey(name)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", name, err)
	}
	return nil
}

// List implements objectstore.Backend
func (d *s3Backend) List(ctx context.Context, prefix string) ([]string, error) {
	if d.client == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	paginator := s3.NewListObjectsV2Paginator(d.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(d.bucket),
		Prefix: aws.String(d.fullKey(prefix)),
	})
	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), d.prefix))
		}
	}
	return names, nil
}
