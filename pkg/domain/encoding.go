package domain

import (
	"encoding/json"
	"fmt"
)

// MaxRecordBytes is the uniform per-record encoded-size ceiling. The bound
// keeps the worst-case page footprint of any single record predictable; it
// applies to every entity type through the same check.
const MaxRecordBytes = 512

// EncodedSize returns the JSON-encoded size of a record in bytes.
func EncodedSize(record any) (int, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("encode record: %w", err)
	}
	return len(data), nil
}

// CheckRecordSize verifies that a record fits within MaxRecordBytes,
// returning SizeExceededError when it does not. Oversized records are
// rejected before any store mutation commits.
func CheckRecordSize(entity EntityType, record any) error {
	size, err := EncodedSize(record)
	if err != nil {
		return err
	}
	if size > MaxRecordBytes {
		return SizeExceededError{Entity: entity, Size: size, Limit: MaxRecordBytes}
	}
	return nil
}
