package pipeline

import (
	"errors"

	"gridsetter/models"
	"gridsetter/search"
)

// Status is the result of one artwork slot for one shortcut
type Status string

const (
	StatusWritten   Status = "written"
	StatusAbsent    Status = "absent"   // the game has no image of the type
	StatusNoMatch   Status = "no-match" // the catalog does not know the game
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// TypeOutcome records what happened to one image type
type TypeOutcome struct {
	Type    models.ImageType `json:"type"`
	Status  Status           `json:"status"`
	Path    string           `json:"path,omitempty"`
	AssetID int              `json:"asset_id,omitempty"`
	Error   string           `json:"error,omitempty"`
	Err     error            `json:"-"`
}

func newOutcome(t models.ImageType, status Status, err error) TypeOutcome {
	o := TypeOutcome{Type: t, Status: status, Err: err}
	if err != nil {
		o.Error = err.Error()
	}
	return o
}

// Unavailable reports whether the slot failed because the catalog could not
// be reached
func (o TypeOutcome) Unavailable() bool {
	return o.Status == StatusFailed && errors.Is(o.Err, search.ErrCatalogUnavailable)
}

// ShortcutOutcome is the per-shortcut section of a Report
type ShortcutOutcome struct {
	Shortcut models.Shortcut      `json:"shortcut"`
	GridID   uint32               `json:"grid_id"`
	Match    *models.CatalogMatch `json:"match,omitempty"`
	Types    []TypeOutcome        `json:"types"`
}

// Outcome returns the outcome for t
func (o ShortcutOutcome) Outcome(t models.ImageType) (TypeOutcome, bool) {
	for _, to := range o.Types {
		if to.Type == t {
			return to, true
		}
	}
	return TypeOutcome{}, false
}

// Report collects the outcome of a run, in shortcut order
type Report struct {
	RunID     string            `json:"run_id"`
	GridDir   string            `json:"grid_dir"`
	Shortcuts []ShortcutOutcome `json:"shortcuts"`
}

// Summary holds per-status counts over all image slots
type Summary struct {
	Shortcuts   int `json:"shortcuts"`
	Written     int `json:"written"`
	Absent      int `json:"absent"`
	NoMatch     int `json:"no_match"`
	Failed      int `json:"failed"`
	Cancelled   int `json:"cancelled"`
	Unavailable int `json:"unavailable"`
}

// Add accumulates other into s
func (s *Summary) Add(other Summary) {
	s.Shortcuts += other.Shortcuts
	s.Written += other.Written
	s.Absent += other.Absent
	s.NoMatch += other.NoMatch
	s.Failed += other.Failed
	s.Cancelled += other.Cancelled
	s.Unavailable += other.Unavailable
}

// Summary counts the report's outcomes
func (r *Report) Summary() Summary {
	s := Summary{Shortcuts: len(r.Shortcuts)}
	for _, sc := range r.Shortcuts {
		for _, o := range sc.Types {
			switch o.Status {
			case StatusWritten:
				s.Written++
			case StatusAbsent:
				s.Absent++
			case StatusNoMatch:
				s.NoMatch++
			case StatusFailed:
				s.Failed++
			case StatusCancelled:
				s.Cancelled++
			}
			if o.Unavailable() {
				s.Unavailable++
			}
		}
	}
	return s
}
