package source

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
)

// DefaultCount is the size of a generated dataset when none is configured.
const DefaultCount = 5000

type region struct {
	name           string
	latMin, latMax float64
	lngMin, lngMax float64
}

type sector struct {
	name  string
	names []string
}

var regions = []region{
	{name: "North America", latMin: 25, latMax: 50, lngMin: -125, lngMax: -70},
	{name: "Europe", latMin: 35, latMax: 60, lngMin: -10, lngMax: 40},
	{name: "Asia", latMin: 10, latMax: 50, lngMin: 60, lngMax: 140},
	{name: "Australia", latMin: -40, latMax: -12, lngMin: 110, lngMax: 155},
}

var sectors = []sector{
	{name: "Education", names: []string{"Global Academy", "Digital Library", "Science Hub", "Primary School Improvement", "Education Tech Platform"}},
	{name: "Healthcare", names: []string{"Community Hospital", "Wellness Center", "Medical Research Lab", "Telemedicine App", "Vaccine Distribution"}},
	{name: "Infrastructure", names: []string{"Bypass Bridge", "Smart Highway", "Renewable Power Plant", "Urban Metro Extension", "Water Treatment Facility"}},
	{name: "Environment", names: []string{"Rainforest Preservation", "Ocean Cleanup", "Solar Park", "Carbon Capture Lab", "Wildlife Sanctuary"}},
	{name: "Technology", names: []string{"AI Ethics Center", "Cloud Computing Hub", "Cybersecurity Initiative", "Startup Incubator", "Quantum Computing Lab"}},
}

const updateWindow = 365 * 24 * time.Hour

// Generator produces a synthetic project dataset. The same seed and clock
// always produce the same records.
type Generator struct {
	Count int
	Seed  uint64
	Now   func() time.Time
}

// NewGenerator creates a generator for count records.
func NewGenerator(count int, seed uint64) *Generator {
	return &Generator{Count: count, Seed: seed, Now: time.Now}
}

// Fetch generates the dataset.
func (g *Generator) Fetch(ctx context.Context) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.Generate(), nil
}

// ListStatuses returns every status.
func (g *Generator) ListStatuses() []record.Status {
	return record.Statuses()
}

// Generate builds the records. Project names carry a phase number that
// advances every hundred records.
func (g *Generator) Generate() []record.Record {
	count := g.Count
	if count <= 0 {
		count = DefaultCount
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	base := now().UTC().Truncate(time.Millisecond)
	rng := rand.New(rand.NewPCG(g.Seed, g.Seed^0x9e3779b97f4a7c15))
	statuses := record.Statuses()

	records := make([]record.Record, count)
	for i := range records {
		reg := regions[rng.IntN(len(regions))]
		sec := sectors[rng.IntN(len(sectors))]
		name := sec.names[rng.IntN(len(sec.names))]
		updated := base.Add(-time.Duration(rng.Float64() * float64(updateWindow))).Truncate(time.Millisecond)

		records[i] = record.Record{
			ID:          int64(i + 1),
			ProjectName: fmt.Sprintf("%s - Phase %d", name, i/100+1),
			Category:    sec.name,
			Latitude:    reg.latMin + rng.Float64()*(reg.latMax-reg.latMin),
			Longitude:   reg.lngMin + rng.Float64()*(reg.lngMax-reg.lngMin),
			Status:      statuses[rng.IntN(len(statuses))],
			LastUpdated: &updated,
			Region:      reg.name,
		}
	}
	return records
}
