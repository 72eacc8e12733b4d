package record

import (
	"fmt"
	"math"
)

// Validate checks a single record against the model constraints.
func Validate(r Record) error {
	if r.ID < 1 {
		return fmt.Errorf("%w: id %d must be >= 1", ErrMalformedData, r.ID)
	}
	if math.IsNaN(r.Latitude) || r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("%w: record %d latitude %v out of range", ErrMalformedData, r.ID, r.Latitude)
	}
	if math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("%w: record %d longitude %v out of range", ErrMalformedData, r.ID, r.Longitude)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: record %d status %q: %w", ErrMalformedData, r.ID, r.Status, ErrInvalidStatus)
	}
	return nil
}

// ValidateAll checks every record and that ids are unique within the set.
func ValidateAll(records []Record) error {
	seen := make(map[int64]struct{}, len(records))
	for _, r := range records {
		if err := Validate(r); err != nil {
			return err
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: %w: %d", ErrMalformedData, ErrDuplicateID, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
