package jobs

import (
	"encoding/json"

	"github.com/dd0wney/scout/pkg/validation"
)

// MaxSelection is the reinforcement selection capacity.
const MaxSelection = 3

// MapData is the payload of every map endpoint: one center and its related
// jobs. A nil Center means no result.
type MapData struct {
	Center  *Job   `json:"center"`
	Related []Job  `json:"related"`
	Error   string `json:"error,omitempty"`
}

// Empty reports whether the payload carries no usable center.
func (m *MapData) Empty() bool {
	return m == nil || m.Center == nil
}

// mapDataWire decodes related entries one by one so a single malformed job
// does not discard the whole payload.
type mapDataWire struct {
	Center  json.RawMessage   `json:"center"`
	Related []json.RawMessage `json:"related"`
	Error   string            `json:"error"`
}

// DecodeMapData parses a payload, dropping related jobs that fail to decode
// and clearing a malformed center. It reports how many records were dropped.
func DecodeMapData(data []byte) (*MapData, int, error) {
	var w mapDataWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, 0, err
	}

	out := &MapData{Error: w.Error, Related: make([]Job, 0, len(w.Related))}
	dropped := 0

	if len(w.Center) > 0 && string(w.Center) != "null" {
		var c Job
		if err := json.Unmarshal(w.Center, &c); err != nil {
			dropped++
		} else {
			out.Center = &c
		}
	}

	for _, raw := range w.Related {
		var j Job
		if err := json.Unmarshal(raw, &j); err != nil {
			dropped++
			continue
		}
		out.Related = append(out.Related, j)
	}
	return out, dropped, nil
}

// ReinforceRequest is the body of POST /reinforce.
type ReinforceRequest struct {
	CenterID    int64   `json:"center_id" validate:"gte=0"`
	SelectedIDs []int64 `json:"selected_ids" validate:"min=1,max=3,unique,dive,gte=0"`
}

// Validate checks the struct tags.
func (r *ReinforceRequest) Validate() error {
	return validation.Struct(r)
}
