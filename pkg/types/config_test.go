// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"testing"
)

func weightsWith(mutate func(map[string]float64)) map[string]float64 {
	w := DefaultWeights()
	mutate(w)
	return w
}

func TestScoringConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights map[string]float64
		wantErr string
	}{
		{name: "empty table means defaults", weights: nil},
		{name: "defaults pass", weights: DefaultWeights()},
		{
			name:    "missing sub-score",
			weights: weightsWith(func(w map[string]float64) { delete(w, "visa") }),
			wantErr: `missing "visa"`,
		},
		{
			name: "negative weight",
			weights: weightsWith(func(w map[string]float64) {
				w["visa"] = -0.1
				w["cost"] = 0.3
			}),
			wantErr: `"visa" is negative`,
		},
		{
			name:    "sum away from one",
			weights: weightsWith(func(w map[string]float64) { w["visa"] = 0.2 }),
			wantErr: "sum to 1.100000",
		},
		{
			name:    "typo alongside valid names",
			weights: weightsWith(func(w map[string]float64) { w["wether"] = 0 }),
			wantErr: `unknown scoring weight "wether"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ScoringConfig{Weights: tt.weights}.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
