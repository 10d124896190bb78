package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
)

// Dataset is a bundle of reference data, typically read from a JSON file.
type Dataset struct {
	Crew           []model.Crew          `json:"crew"`
	Flights        []model.Flight        `json:"flights"`
	Qualifications []model.Qualification `json:"qualifications"`
	Preferences    []model.Preference    `json:"preferences"`
	Availability   []model.Availability  `json:"availability"`
	Constraints    []rules.Config        `json:"constraints"`
}

// ReadDataset decodes a JSON dataset. Unknown fields are rejected.
func ReadDataset(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}

// Count returns the number of records in the dataset.
func (ds Dataset) Count() int {
	return len(ds.Crew) + len(ds.Flights) + len(ds.Qualifications) + len(ds.Preferences) +
		len(ds.Availability) + len(ds.Constraints)
}

// Import writes every record of ds. Crew and flights go first so the other
// records can reference them.
func Import(ctx context.Context, w Writer, ds Dataset) error {
	for _, c := range ds.Crew {
		if err := w.PutCrew(ctx, c); err != nil {
			return fmt.Errorf("crew %d: %w", c.ID, err)
		}
	}
	for _, f := range ds.Flights {
		if err := w.PutFlight(ctx, f); err != nil {
			return fmt.Errorf("flight %s: %w", f.FlightNo, err)
		}
	}
	for _, q := range ds.Qualifications {
		if err := w.PutQualification(ctx, q); err != nil {
			return fmt.Errorf("qualification %d/%s: %w", q.CrewID, q.AircraftCode, err)
		}
	}
	for _, p := range ds.Preferences {
		if err := w.PutPreference(ctx, p); err != nil {
			return fmt.Errorf("preference %d/%s: %w", p.CrewID, p.Kind, err)
		}
	}
	for _, a := range ds.Availability {
		if err := w.PutAvailability(ctx, a); err != nil {
			return fmt.Errorf("availability %d: %w", a.CrewID, err)
		}
	}
	for _, c := range ds.Constraints {
		if err := w.PutConstraintsConfig(ctx, c); err != nil {
			return fmt.Errorf("constraints %s: %w", c.Version, err)
		}
	}
	return ctx.Err()
}
