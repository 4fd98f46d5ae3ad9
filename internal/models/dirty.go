package models

import "fmt"

// CleaningData records the known defect counts for one version of a plugin
// and the utility that removes them. ITM is "identical to master" records,
// UDR is "undeleted and disabled" references.
type CleaningData struct {
	CRC             uint32 `json:"crc" yaml:"crc"`
	ITMCount        uint   `json:"itm" yaml:"itm"`
	UDRCount        uint   `json:"udr" yaml:"udr"`
	DeletedNavmesh  uint   `json:"nav" yaml:"nav"`
	CleaningUtility string `json:"util" yaml:"util"`
	Condition       string `json:"-" yaml:"condition,omitempty"`
}

// HasCondition reports whether the record is gated by a condition
// expression.
func (d CleaningData) HasCondition() bool {
	return d.Condition != ""
}

// sameAs reports identity for set-union purposes.
func (d CleaningData) sameAs(other CleaningData) bool {
	return d.CRC == other.CRC && d.CleaningUtility == other.CleaningUtility
}

// Describe renders the record as a human-readable cleaning instruction.
// The sentence shape depends on which counts are nonzero, giving eight
// variants in total.
func (d CleaningData) Describe() string {
	itm, udr, nav := d.ITMCount, d.UDRCount, d.DeletedNavmesh
	util := d.CleaningUtility

	switch {
	case itm == 0 && udr == 0 && nav == 0:
		return fmt.Sprintf("Clean with %s.", util)
	case itm > 0 && udr == 0 && nav == 0:
		return fmt.Sprintf("Contains %d ITM records. Clean with %s.", itm, util)
	case itm == 0 && udr > 0 && nav == 0:
		return fmt.Sprintf("Contains %d UDR records. Clean with %s.", udr, util)
	case itm == 0 && udr == 0 && nav > 0:
		return fmt.Sprintf("Contains %d deleted navmeshes. Clean with %s.", nav, util)
	case itm > 0 && udr > 0 && nav == 0:
		return fmt.Sprintf("Contains %d ITM records and %d UDR records. Clean with %s.", itm, udr, util)
	case itm > 0 && udr == 0 && nav > 0:
		return fmt.Sprintf("Contains %d ITM records and %d deleted navmeshes. Clean with %s.", itm, nav, util)
	case itm == 0 && udr > 0 && nav > 0:
		return fmt.Sprintf("Contains %d UDR records and %d deleted navmeshes. Clean with %s.", udr, nav, util)
	default:
		return fmt.Sprintf("Contains %d ITM records, %d UDR records and %d deleted navmeshes. Clean with %s.", itm, udr, nav, util)
	}
}
