package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/lunamail/lunamail/internal/models"
)

// maxRecordedErrors caps how many error messages are kept per history
// entry; the live report is never truncated.
const maxRecordedErrors = 10

// History is an append-only log of import outcomes, one bbolt bucket per
// owner keyed by timestamp.
type History struct {
	db *bolt.DB
}

// OpenHistory opens (or creates) the history database at path.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return &History{db: db}, nil
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}

// Record appends one import outcome for an owner.
func (h *History) Record(ownerID string, report *models.ImportReport) error {
	record := models.ImportRecord{
		TotalRows:  report.TotalProcessed,
		Imported:   report.Imported,
		Failed:     report.Errors,
		ImportedAt: time.Now(),
	}
	if len(report.ErrorMessages) > maxRecordedErrors {
		record.Errors = report.ErrorMessages[:maxRecordedErrors]
	} else {
		record.Errors = report.ErrorMessages
	}

	value, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return h.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(ownerID))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(record.ImportedAt.Format(time.RFC3339Nano)), value)
	})
}

// Recent returns up to n most recent import records for an owner, newest
// first.
func (h *History) Recent(ownerID string, n int) ([]models.ImportRecord, error) {
	records := []models.ImportRecord{}

	err := h.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(ownerID))
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.Last(); k != nil && len(records) < n; k, v = c.Prev() {
			var record models.ImportRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
