// Copyright 2025 Blink Labs Software
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


package database

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/leapfrog/database/types"
)

// CommitTimestampError reports that the stores were last committed at
// different times, which means a previous commit only partially landed
type CommitTimestampError struct {
	MetadataTimestamp int64
	BlobTimestamp     int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"commit timestamp mismatch: %d (metadata) != %d (blob)",
		e.MetadataTimestamp,
		e.BlobTimestamp,
	)
}

func (d *Database) checkCommitTimestamp() error {
	// Get value from metadata
	metadataTimestamp, metadataErr := d.Metadata().GetCommitTimestamp()
	if metadataErr != nil {
		return fmt.Errorf(
			"failed to get metadata timestamp from plugin: %w",
			metadataErr,
		)
	}
	// No timestamp in the database
	if metadataTimestamp <= 0 {
		return nil
	}
	// Get value from blob. A missing key on a populated metadata store is
	// reported as a mismatch.
	blobTimestamp, blobErr := d.Blob().GetCommitTimestamp()
	if blobErr != nil && !errors.Is(blobErr, types.ErrBlobKeyNotFound) {
		return fmt.Errorf(
			"failed to get blob timestamp from plugin: %w",
			blobErr,
		)
	}
	// Compare values
	if blobTimestamp != metadataTimestamp {
		return CommitTimestampError{
			MetadataTimestamp: metadataTimestamp,
			BlobTimestamp:     blobTimestamp,
		}
	}
	return nil
}

func (d *Database) updateCommitTimestamp(timestamp int64, txn *Txn) error {
	// Update metadata
	if err := d.Metadata().SetCommitTimestamp(timestamp, txn.Metadata()); err != nil {
		return err
	}
	// Update blob
	if err := d.Blob().SetCommitTimestamp(timestamp, txn.Blob()); err != nil {
		return err
	}
	return nil
}

// RecoverCommitTimestamp restamps both stores with a fresh commit
// timestamp so a database reporting a CommitTimestampError can be used
// again. Account images in the blob store stay authoritative for reads.
func (d *Database) RecoverCommitTimestamp() error {
	if err := d.checkCommitTimestamp(); err == nil {
		return nil
	} else if !errors.As(err, new(CommitTimestampError)) {
		return err
	}
	d.logger.Warn(
		"recovering commit timestamp mismatch",
		"component", "database",
	)
	// Committing a read-write transaction over both stores writes the same
	// timestamp to each
	return d.Transaction(true).Commit()
}
