package explorer

import (
	"github.com/rpggio/geodash/internal/domain/pagination"
	"github.com/rpggio/geodash/internal/domain/query"
	"github.com/rpggio/geodash/internal/domain/record"
)

// Position locates a record within the current view.
type Position struct {
	Index int `json:"index"`
	Page  int `json:"page"`
	Row   int `json:"row"`
}

// Snapshot is a consistent copy of a session's state. View and Page share
// the service's read-only view.
type Snapshot struct {
	Loaded           bool             `json:"loaded"`
	DatasetSize      int              `json:"dataset_size"`
	Filter           query.FilterSpec `json:"filter"`
	Sort             query.SortSpec   `json:"sort"`
	View             []record.Record  `json:"-"`
	Page             []record.Record  `json:"page"`
	PageState        pagination.State `json:"page_state"`
	PageCount        int              `json:"page_count"`
	Total            int              `json:"total"`
	Selected         *int64           `json:"selected,omitempty"`
	SelectedRecord   *record.Record   `json:"selected_record,omitempty"`
	SelectedPosition *Position        `json:"selected_position,omitempty"`
}
