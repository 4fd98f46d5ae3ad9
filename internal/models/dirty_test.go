package models

import "testing"

func TestCleaningDataDescribe(t *testing.T) {
	tests := []struct {
		name string
		data CleaningData
		want string
	}{
		{
			name: "no counts",
			data: CleaningData{CleaningUtility: "TES5Edit"},
			want: "Clean with TES5Edit.",
		},
		{
			name: "itm only",
			data: CleaningData{ITMCount: 4, CleaningUtility: "TES5Edit"},
			want: "Contains 4 ITM records. Clean with TES5Edit.",
		},
		{
			name: "udr only",
			data: CleaningData{UDRCount: 2, CleaningUtility: "TES5Edit"},
			want: "Contains 2 UDR records. Clean with TES5Edit.",
		},
		{
			name: "navmesh only",
			data: CleaningData{DeletedNavmesh: 1, CleaningUtility: "TES5Edit"},
			want: "Contains 1 deleted navmeshes. Clean with TES5Edit.",
		},
		{
			name: "itm and udr",
			data: CleaningData{ITMCount: 4, UDRCount: 2, CleaningUtility: "TES5Edit"},
			want: "Contains 4 ITM records and 2 UDR records. Clean with TES5Edit.",
		},
		{
			name: "itm and navmesh",
			data: CleaningData{ITMCount: 2, DeletedNavmesh: 3, CleaningUtility: "T"},
			want: "Contains 2 ITM records and 3 deleted navmeshes. Clean with T.",
		},
		{
			name: "udr and navmesh",
			data: CleaningData{UDRCount: 5, DeletedNavmesh: 1, CleaningUtility: "FO3Edit"},
			want: "Contains 5 UDR records and 1 deleted navmeshes. Clean with FO3Edit.",
		},
		{
			name: "all counts",
			data: CleaningData{ITMCount: 7, UDRCount: 6, DeletedNavmesh: 5, CleaningUtility: "TES4Edit"},
			want: "Contains 7 ITM records, 6 UDR records and 5 deleted navmeshes. Clean with TES4Edit.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.data.Describe()
			if got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleaningDataSameAs(t *testing.T) {
	a := CleaningData{CRC: 0xDEADBEEF, ITMCount: 1, CleaningUtility: "TES5Edit"}
	b := CleaningData{CRC: 0xDEADBEEF, ITMCount: 9, CleaningUtility: "TES5Edit"}
	c := CleaningData{CRC: 0xCAFEBABE, CleaningUtility: "TES5Edit"}

	if !a.sameAs(b) {
		t.Error("records with matching CRC and utility should be the same entry")
	}
	if a.sameAs(c) {
		t.Error("records with different CRCs should be distinct entries")
	}
}
