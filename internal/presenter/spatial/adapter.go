package spatial

import (
	"math"

	"github.com/google/uuid"
	"github.com/rpggio/geodash/internal/domain/explorer"
	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/domain/selection"
)

const (
	// FocusZoom is the zoom level used when centring on a selected record.
	FocusZoom = 10
	// MaxZoom is the deepest zoom level clusters are computed for.
	MaxZoom = 18

	// CellPixels is the cluster cell edge in screen pixels.
	CellPixels = 80

	tileSize = 256
	// maxLatitude is where the web-mercator square ends.
	maxLatitude = 85.05112878
)

// Source is the explorer state the map reads.
type Source interface {
	Subscribe(fn selection.Listener) uuid.UUID
	Unsubscribe(id uuid.UUID)
	SelectedID() (int64, bool)
	Lookup(id int64) (record.Record, bool)
	Locate(id int64) (explorer.Position, bool)
	CurrentView() []record.Record
}

// Focus centres the map on a selected record.
type Focus struct {
	ID          int64   `json:"id"`
	ProjectName string  `json:"project_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Zoom        int     `json:"zoom"`
}

// Marker is one record on the map.
type Marker struct {
	ID          int64         `json:"id"`
	ProjectName string        `json:"project_name"`
	Status      record.Status `json:"status"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	Selected    bool          `json:"selected"`
}

// Cluster groups the markers that share a grid cell at some zoom level.
type Cluster struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
	IDs       []int64 `json:"ids"`
}

// Adapter follows selection changes for the map view. It renders every
// record in the view, not just the current page.
type Adapter struct {
	src     Source
	onFocus func(Focus)
	sub     uuid.UUID
}

// NewAdapter subscribes to src. onFocus, if set, is called when a record in
// the current view becomes selected.
func NewAdapter(src Source, onFocus func(Focus)) *Adapter {
	a := &Adapter{src: src, onFocus: onFocus}
	a.sub = src.Subscribe(a.onSelection)
	return a
}

// Close stops following selection changes.
func (a *Adapter) Close() {
	a.src.Unsubscribe(a.sub)
}

func (a *Adapter) onSelection(change selection.Change) {
	if change.Current == nil || a.onFocus == nil {
		return
	}
	if focus, ok := a.focusFor(*change.Current); ok {
		a.onFocus(focus)
	}
}

// Focus returns the focus for the current selection. It is absent when
// nothing is selected or the selected record is filtered out of the view.
func (a *Adapter) Focus() (Focus, bool) {
	id, ok := a.src.SelectedID()
	if !ok {
		return Focus{}, false
	}
	return a.focusFor(id)
}

func (a *Adapter) focusFor(id int64) (Focus, bool) {
	if _, inView := a.src.Locate(id); !inView {
		return Focus{}, false
	}
	r, ok := a.src.Lookup(id)
	if !ok {
		return Focus{}, false
	}
	return Focus{
		ID:          r.ID,
		ProjectName: r.ProjectName,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Zoom:        FocusZoom,
	}, true
}

// Markers returns a marker for every record in the view, in view order.
func (a *Adapter) Markers() []Marker {
	selected, hasSelection := a.src.SelectedID()
	view := a.src.CurrentView()
	markers := make([]Marker, len(view))
	for i, r := range view {
		markers[i] = Marker{
			ID:          r.ID,
			ProjectName: r.ProjectName,
			Status:      r.Status,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			Selected:    hasSelection && r.ID == selected,
		}
	}
	return markers
}

// Clusters groups the view's markers into square grid cells sized for zoom.
// Clusters are ordered by the view position of their first marker and are
// centred on the mean of their members.
func (a *Adapter) Clusters(zoom int) []Cluster {
	return Group(a.src.CurrentView(), zoom)
}

// Project returns the web-mercator pixel position of a point at zoom, with
// (0, 0) at the north-west corner of the world. Latitudes beyond the mercator
// square are clamped to its edge.
func Project(lat, lng float64, zoom int) (x, y float64) {
	zoom = max(0, min(zoom, MaxZoom))
	scale := tileSize * math.Exp2(float64(zoom))
	lat = max(-maxLatitude, min(lat, maxLatitude))
	sin := math.Sin(lat * math.Pi / 180)
	x = (lng + 180) / 360 * scale
	y = (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * scale
	return x, y
}

// Group clusters records into CellPixels-square cells of the web-mercator
// pixel grid for zoom.
func Group(records []record.Record, zoom int) []Cluster {
	type cell struct{ x, y int64 }

	index := make(map[cell]int)
	var clusters []Cluster
	for _, r := range records {
		x, y := Project(r.Latitude, r.Longitude, zoom)
		c := cell{
			x: int64(math.Floor(x / CellPixels)),
			y: int64(math.Floor(y / CellPixels)),
		}
		i, ok := index[c]
		if !ok {
			i = len(clusters)
			index[c] = i
			clusters = append(clusters, Cluster{})
		}
		cl := &clusters[i]
		cl.Count++
		cl.IDs = append(cl.IDs, r.ID)
		// Running mean keeps the centre exact for single-member clusters.
		cl.Latitude += (r.Latitude - cl.Latitude) / float64(cl.Count)
		cl.Longitude += (r.Longitude - cl.Longitude) / float64(cl.Count)
	}
	return clusters
}
