package models

import "testing"

func TestEncodePriority(t *testing.T) {
	tests := []struct {
		name           string
		raw            int
		wantNormalized int
		wantGlobal     bool
	}{
		{
			name:           "zero",
			raw:            0,
			wantNormalized: 0,
			wantGlobal:     false,
		},
		{
			name:           "small positive",
			raw:            5,
			wantNormalized: 5,
			wantGlobal:     false,
		},
		{
			name:           "small negative wraps",
			raw:            -1,
			wantNormalized: 99999,
			wantGlobal:     false,
		},
		{
			name:           "just below modulus",
			raw:            99999,
			wantNormalized: 99999,
			wantGlobal:     false,
		},
		{
			name:           "exactly modulus is global",
			raw:            100000,
			wantNormalized: 0,
			wantGlobal:     true,
		},
		{
			name:           "above modulus keeps remainder",
			raw:            150000,
			wantNormalized: 50000,
			wantGlobal:     true,
		},
		{
			name:           "negative global wraps",
			raw:            -100001,
			wantNormalized: 99999,
			wantGlobal:     true,
		},
		{
			name:           "exact negative modulus",
			raw:            -100000,
			wantNormalized: 0,
			wantGlobal:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalized, isGlobal := EncodePriority(tt.raw)
			if normalized != tt.wantNormalized {
				t.Errorf("EncodePriority(%d) normalized = %d, want %d", tt.raw, normalized, tt.wantNormalized)
			}
			if isGlobal != tt.wantGlobal {
				t.Errorf("EncodePriority(%d) isGlobal = %v, want %v", tt.raw, isGlobal, tt.wantGlobal)
			}
		})
	}
}

func TestEncodePriorityNeverNegative(t *testing.T) {
	for _, raw := range []int{-1, -99999, -100000, -250000, -1000001} {
		normalized, _ := EncodePriority(raw)
		if normalized < 0 || normalized >= MaxPriority {
			t.Errorf("EncodePriority(%d) = %d, want value in [0, %d)", raw, normalized, MaxPriority)
		}
	}
}
