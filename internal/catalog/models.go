// Package catalog holds the ITSG-33 control reference data. Controls are
// immutable once loaded; an assessment takes the subset its target profile
// requires and never writes back.
package catalog

import (
	"fmt"
	"strings"
)

// Family is a two-letter ITSG-33 control family code.
type Family string

const (
	FamilyAC Family = "AC"
	FamilyAT Family = "AT"
	FamilyAU Family = "AU"
	FamilyCA Family = "CA"
	FamilyCM Family = "CM"
	FamilyCP Family = "CP"
	FamilyIA Family = "IA"
	FamilyIR Family = "IR"
	FamilyMA Family = "MA"
	FamilyMP Family = "MP"
	FamilyPE Family = "PE"
	FamilyPL Family = "PL"
	FamilyPS Family = "PS"
	FamilyRA Family = "RA"
	FamilySA Family = "SA"
	FamilySC Family = "SC"
	FamilySI Family = "SI"
)

// FamilyNames maps family codes to their display names.
var FamilyNames = map[Family]string{
	FamilyAC: "Access Control",
	FamilyAT: "Awareness and Training",
	FamilyAU: "Audit and Accountability",
	FamilyCA: "Assessment, Authorization, and Monitoring",
	FamilyCM: "Configuration Management",
	FamilyCP: "Contingency Planning",
	FamilyIA: "Identification and Authentication",
	FamilyIR: "Incident Response",
	FamilyMA: "Maintenance",
	FamilyMP: "Media Protection",
	FamilyPE: "Physical and Environmental Protection",
	FamilyPL: "Planning",
	FamilyPS: "Personnel Security",
	FamilyRA: "Risk Assessment",
	FamilySA: "System and Services Acquisition",
	FamilySC: "System and Communications Protection",
	FamilySI: "System and Information Integrity",
}

// Families returns all family codes in catalog order.
func Families() []Family {
	return []Family{
		FamilyAC, FamilyAT, FamilyAU, FamilyCA, FamilyCM, FamilyCP,
		FamilyIA, FamilyIR, FamilyMA, FamilyMP, FamilyPE, FamilyPL,
		FamilyPS, FamilyRA, FamilySA, FamilySC, FamilySI,
	}
}

// IsValid reports whether the family is one of the seventeen ITSG-33 families.
func (f Family) IsValid() bool {
	_, ok := FamilyNames[f]
	return ok
}

// Profile is an ITSG-33 security profile tier. Profile 1 covers low-impact
// systems; higher tiers add controls.
type Profile int

const (
	Profile1 Profile = 1
	Profile2 Profile = 2
	Profile3 Profile = 3
)

// IsValid reports whether the profile is a defined tier.
func (p Profile) IsValid() bool {
	return p >= Profile1 && p <= Profile3
}

// ProfileDescriptions maps profiles to their short descriptions.
var ProfileDescriptions = map[Profile]string{
	Profile1: "Low impact systems with low sensitivity data",
	Profile2: "Moderate impact systems with moderate sensitivity data",
	Profile3: "High impact systems with high sensitivity data or critical operations",
}

// Control is a single ITSG-33 security control.
type Control struct {
	ID         string  `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	Family     Family  `yaml:"family" json:"family"`
	MinProfile Profile `yaml:"profile" json:"min_profile"`
}

// Validate checks the control's reference-data invariants.
func (c Control) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("control id is required")
	}
	if !strings.HasPrefix(c.ID, string(c.Family)+"-") {
		return fmt.Errorf("control %s: id must start with family code %s", c.ID, c.Family)
	}
	if !c.Family.IsValid() {
		return fmt.Errorf("control %s: unknown family %q", c.ID, c.Family)
	}
	if !c.MinProfile.IsValid() {
		return fmt.Errorf("control %s: profile must be 1-3, got %d", c.ID, c.MinProfile)
	}
	return nil
}
