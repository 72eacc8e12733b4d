package table

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/geodash/internal/domain/explorer"
	"github.com/rpggio/geodash/internal/domain/pagination"
	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/domain/selection"
)

// TimestampLayout formats the last-updated column.
const TimestampLayout = "2006-01-02 15:04"

// Source is the explorer state the table reads.
type Source interface {
	Subscribe(fn selection.Listener) uuid.UUID
	Unsubscribe(id uuid.UUID)
	SelectedID() (int64, bool)
	Locate(id int64) (explorer.Position, bool)
	PageState() pagination.State
	CurrentPageSlice() []record.Record
}

// RowTarget is where the table should scroll to show the selected record.
// The table never changes page by itself; OnCurrentPage tells the caller
// whether the row is visible without paging.
type RowTarget struct {
	ID            int64 `json:"id"`
	InView        bool  `json:"in_view"`
	Page          int   `json:"page"`
	Row           int   `json:"row"`
	OnCurrentPage bool  `json:"on_current_page"`
}

// Row is one display row.
type Row struct {
	ID          int64  `json:"id"`
	ProjectName string `json:"project_name"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	Status      string `json:"status"`
	LastUpdated string `json:"last_updated"`
	Selected    bool   `json:"selected"`
}

// Adapter follows selection changes for the tabular view.
type Adapter struct {
	src      Source
	loc      *time.Location
	onScroll func(RowTarget)
	sub      uuid.UUID
}

// NewAdapter subscribes to src. onScroll, if set, is called with the target
// row whenever a record becomes selected.
func NewAdapter(src Source, loc *time.Location, onScroll func(RowTarget)) *Adapter {
	if loc == nil {
		loc = time.Local
	}
	a := &Adapter{src: src, loc: loc, onScroll: onScroll}
	a.sub = src.Subscribe(a.onSelection)
	return a
}

// Close stops following selection changes.
func (a *Adapter) Close() {
	a.src.Unsubscribe(a.sub)
}

func (a *Adapter) onSelection(change selection.Change) {
	if change.Current == nil || a.onScroll == nil {
		return
	}
	a.onScroll(a.targetFor(*change.Current))
}

// Target returns the scroll target for the current selection.
func (a *Adapter) Target() (RowTarget, bool) {
	id, ok := a.src.SelectedID()
	if !ok {
		return RowTarget{}, false
	}
	return a.targetFor(id), true
}

func (a *Adapter) targetFor(id int64) RowTarget {
	target := RowTarget{ID: id}
	pos, ok := a.src.Locate(id)
	if !ok {
		return target
	}
	target.InView = true
	target.Page = pos.Page
	target.Row = pos.Row
	target.OnCurrentPage = pos.Page == a.src.PageState().Index
	return target
}

// Rows returns the current page as display rows.
func (a *Adapter) Rows() []Row {
	selected, hasSelection := a.src.SelectedID()
	page := a.src.CurrentPageSlice()
	rows := make([]Row, len(page))
	for i, r := range page {
		rows[i] = Row{
			ID:          r.ID,
			ProjectName: r.ProjectName,
			Latitude:    strconv.FormatFloat(r.Latitude, 'f', 4, 64),
			Longitude:   strconv.FormatFloat(r.Longitude, 'f', 4, 64),
			Status:      string(r.Status),
			Selected:    hasSelection && r.ID == selected,
		}
		if r.LastUpdated != nil {
			rows[i].LastUpdated = r.LastUpdated.In(a.loc).Format(TimestampLayout)
		}
	}
	return rows
}
