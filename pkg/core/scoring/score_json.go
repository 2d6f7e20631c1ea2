package scoring

import (
	"encoding/json"
	"math"
)

// scoreJSON is the wire form of Score. The numeric fields are pointers so a
// failed entity's NaN scores serialize as null: encoding/json refuses NaN,
// and one failed entity must never make a whole run unpersistable.
type scoreJSON struct {
	LEI            string   `json:"lei"`
	EntityName     string   `json:"entity_name"`
	Specificity    *float64 `json:"specificity"`
	Completeness   *float64 `json:"completeness"`
	ForwardLooking *float64 `json:"forward_looking"`
	Consistency    *float64 `json:"consistency"`
	Comparability  *float64 `json:"comparability"`
	DASRaw         *float64 `json:"das_raw"`
	DASNormalized  *float64 `json:"das_normalized"`
	Rationale      string   `json:"rationale"`
	Status         string   `json:"scoring_status"`
}

func nanToNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func nilToNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// MarshalJSON writes NaN score fields as null.
func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(scoreJSON{
		LEI:            s.LEI,
		EntityName:     s.EntityName,
		Specificity:    nanToNil(s.Specificity),
		Completeness:   nanToNil(s.Completeness),
		ForwardLooking: nanToNil(s.ForwardLooking),
		Consistency:    nanToNil(s.Consistency),
		Comparability:  nanToNil(s.Comparability),
		DASRaw:         nanToNil(s.DASRaw),
		DASNormalized:  nanToNil(s.DASNormalized),
		Rationale:      s.Rationale,
		Status:         s.Status,
	})
}

// UnmarshalJSON restores null score fields to NaN, so a persisted run loads
// back into the same in-memory shape it was saved from.
func (s *Score) UnmarshalJSON(data []byte) error {
	var w scoreJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Score{
		LEI:            w.LEI,
		EntityName:     w.EntityName,
		Specificity:    nilToNaN(w.Specificity),
		Completeness:   nilToNaN(w.Completeness),
		ForwardLooking: nilToNaN(w.ForwardLooking),
		Consistency:    nilToNaN(w.Consistency),
		Comparability:  nilToNaN(w.Comparability),
		DASRaw:         nilToNaN(w.DASRaw),
		DASNormalized:  nilToNaN(w.DASNormalized),
		Rationale:      w.Rationale,
		Status:         w.Status,
	}
	return nil
}
