// Package datasetio provides the one reference geo.DatasetSource
// implementation the CLI depends on to be runnable at all: a JSON file
// of two rectangle arrays. Binary/CSV formats and synthetic generators
// are external-app concerns per spec.md §1 and are not implemented
// here — this is explicitly a stand-in, not a spec-mandated format.
package datasetio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
)

// jsonRect is the wire shape of one rectangle: [loX, loY, hiX, hiY].
type jsonRect = [2 * geo.Dims]float64

// jsonBox pairs a rectangle with its stable external id.
type jsonBox struct {
	ID   uint32   `json:"id"`
	Rect jsonRect `json:"rect"`
}

// jsonDataset is the on-disk document shape: {"name", "r": [...], "s": [...]}.
type jsonDataset struct {
	Name string    `json:"name"`
	R    []jsonBox `json:"r"`
	S    []jsonBox `json:"s"`
}

// JSONFileSource implements geo.DatasetSource by reading a JSON file at
// Path. It performs no validation beyond what geo.Dataset.Validate
// already does — the Runner's Build call is the single place
// InvalidDataset is surfaced.
type JSONFileSource struct {
	Path string
}

// Load reads and decodes the file at s.Path into a geo.Dataset. It does
// not itself call Validate; the caller (cmd/rectjoin run, or any
// Runner.Build) is responsible for validating before use.
func (s JSONFileSource) Load(ctx context.Context) (geo.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return geo.Dataset{}, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return geo.Dataset{}, fmt.Errorf("datasetio: open %s: %w", s.Path, err)
	}
	defer f.Close()

	return decode(f)
}

func decode(r io.Reader) (geo.Dataset, error) {
	var doc jsonDataset

	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return geo.Dataset{}, fmt.Errorf("datasetio: decode: %w", err)
	}

	rRel, err := relationFromBoxes(doc.R)
	if err != nil {
		return geo.Dataset{}, fmt.Errorf("datasetio: relation R: %w", err)
	}

	sRel, err := relationFromBoxes(doc.S)
	if err != nil {
		return geo.Dataset{}, fmt.Errorf("datasetio: relation S: %w", err)
	}

	return geo.Dataset{Name: doc.Name, R: rRel, S: sRel}, nil
}

func relationFromBoxes(boxes []jsonBox) (geo.Relation, error) {
	rects := make([]geo.Rect, len(boxes))
	ids := make([]uint32, len(boxes))

	for i, b := range boxes {
		rects[i] = geo.NewRect(b.Rect[0], b.Rect[1], b.Rect[2], b.Rect[3])
		ids[i] = b.ID
	}

	return geo.NewRelation(rects, ids)
}

var _ geo.DatasetSource = JSONFileSource{}
