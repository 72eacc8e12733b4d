package record

import "time"

// Status represents the lifecycle status of a project record.
type Status string

const (
	StatusActive    Status = "Active"
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusOnHold    Status = "On Hold"
)

var statuses = []Status{StatusActive, StatusPending, StatusCompleted, StatusOnHold}

// Statuses returns every known status in display order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus resolves a status from its wire value.
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Field names a sortable record attribute.
type Field string

const (
	FieldNone        Field = ""
	FieldID          Field = "id"
	FieldProjectName Field = "project_name"
	FieldCategory    Field = "category"
	FieldLatitude    Field = "latitude"
	FieldLongitude   Field = "longitude"
	FieldStatus      Field = "status"
	FieldLastUpdated Field = "last_updated"
	FieldRegion      Field = "region"
)

var sortableFields = []Field{
	FieldID,
	FieldProjectName,
	FieldCategory,
	FieldLatitude,
	FieldLongitude,
	FieldStatus,
	FieldLastUpdated,
	FieldRegion,
}

// SortableFields returns every field a view can be ordered by.
func SortableFields() []Field {
	out := make([]Field, len(sortableFields))
	copy(out, sortableFields)
	return out
}

// Valid reports whether f names a sortable field. FieldNone is valid.
func (f Field) Valid() bool {
	if f == FieldNone {
		return true
	}
	for _, known := range sortableFields {
		if f == known {
			return true
		}
	}
	return false
}

// Record is a geolocated project. Records are immutable once loaded.
type Record struct {
	ID          int64      `json:"id"`
	ProjectName string     `json:"project_name"`
	Category    string     `json:"category"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Status      Status     `json:"status"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Region      string     `json:"region"`
}

// Value returns the raw value of field and whether it is present.
// LastUpdated is the only attribute that can be absent.
func (r Record) Value(field Field) (any, bool) {
	switch field {
	case FieldID:
		return r.ID, true
	case FieldProjectName:
		return r.ProjectName, true
	case FieldCategory:
		return r.Category, true
	case FieldLatitude:
		return r.Latitude, true
	case FieldLongitude:
		return r.Longitude, true
	case FieldStatus:
		return string(r.Status), true
	case FieldLastUpdated:
		if r.LastUpdated == nil {
			return nil, false
		}
		return *r.LastUpdated, true
	case FieldRegion:
		return r.Region, true
	default:
		panic("record: unknown field " + string(field))
	}
}
