package validation

import (
	"strings"
	"testing"
)

type sample struct {
	Title  string   `json:"title" validate:"required"`
	Score  float64  `json:"score" validate:"gte=0,lte=1"`
	IDs    []int64  `json:"ids" validate:"min=1,max=3,unique"`
	Ignore string   `json:"-"`
	Tags   []string `validate:"omitempty,dive,required"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr string
	}{
		{"valid", &sample{Title: "x", Score: 0.5, IDs: []int64{1}}, ""},
		{"missing title", &sample{Score: 0.5, IDs: []int64{1}}, "title: field is required"},
		{"score too high", &sample{Title: "x", Score: 2, IDs: []int64{1}}, "score: must be <= 1"},
		{"score negative", &sample{Title: "x", Score: -1, IDs: []int64{1}}, "score: must be >= 0"},
		{"no ids", &sample{Title: "x", IDs: []int64{}}, "ids: must be at least 1"},
		{"too many ids", &sample{Title: "x", IDs: []int64{1, 2, 3, 4}}, "ids: must not exceed 3"},
		{"duplicate ids", &sample{Title: "x", IDs: []int64{1, 1}}, "ids: must not contain duplicates"},
		{"nil pointer", (*sample)(nil), "value cannot be nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.value)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Struct() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Struct() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestVar(t *testing.T) {
	if err := Var("query", "", "required"); err == nil || !strings.HasPrefix(err.Error(), "query:") {
		t.Errorf("Var() error = %v", err)
	}
	if err := Var("query", "python", "required,max=200"); err != nil {
		t.Errorf("Var() unexpected error: %v", err)
	}
}
