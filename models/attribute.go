// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"fmt"
)

// Dimension identifies one demographic axis of an attribute set.
type Dimension string

const (
	DimAge    Dimension = "age"
	DimGender Dimension = "gender"
	DimRegion Dimension = "region"
	DimSalary Dimension = "salary"
)

// Attribute is one demographic dimension with a typed value or "unset".
// The four variants (Age, Gender, Region, Salary) form a closed set;
// consumers dispatch with a type switch.
type Attribute interface {
	Dimension() Dimension
	// Unset reports whether the attribute carries no value. An unset
	// respondent attribute never satisfies a panel requirement.
	Unset() bool
	sealedAttribute()
}

// ageBuckets are the fixed cohorts every declared age range must reduce to.
var ageBuckets = [][2]int{
	{0, 17},
	{18, 29},
	{30, 39},
	{40, 49},
	{50, 59},
	{60, 69},
	{70, 100},
}

// legacyAgeBucket is accepted as a bucket of its own: older clients declare
// [70,79] instead of the canonical [70,100] cohort, and two such declarations
// must keep matching each other.
var legacyAgeBucket = [2]int{70, 79}

// Age is a specific age, an inclusive range, or unset.
type Age struct {
	Value *int `json:"value,omitempty"`
	Min   *int `json:"min,omitempty"`
	Max   *int `json:"max,omitempty"`
}

func (Age) Dimension() Dimension { return DimAge }
func (Age) sealedAttribute()     {}

func (a Age) Unset() bool {
	return a.Value == nil && (a.Min == nil || a.Max == nil)
}

// bucket reduces the age to an index into the cohort table. The legacy
// [70,79] range maps to its own index past the canonical buckets. Returns
// -1 when the age is unset or reduces to no bucket.
func (a Age) bucket() int {
	if a.Value != nil {
		for i, b := range ageBuckets {
			if *a.Value >= b[0] && *a.Value <= b[1] {
				return i
			}
		}
		return -1
	}
	if a.Min == nil || a.Max == nil {
		return -1
	}
	for i, b := range ageBuckets {
		if *a.Min == b[0] && *a.Max == b[1] {
			return i
		}
	}
	if *a.Min == legacyAgeBucket[0] && *a.Max == legacyAgeBucket[1] {
		return len(ageBuckets)
	}
	return -1
}

// Gender is an enumerated value; the empty string is unset.
type Gender struct {
	Value string `json:"value"`
}

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

func (Gender) Dimension() Dimension { return DimGender }
func (Gender) sealedAttribute()     {}
func (g Gender) Unset() bool        { return g.Value == "" }

// Region is one of the fixed administrative regions; empty is unset.
type Region struct {
	Value string `json:"value"`
}

func (Region) Dimension() Dimension { return DimRegion }
func (Region) sealedAttribute()     {}
func (r Region) Unset() bool        { return r.Value == "" }

// regionCodes is the fixed enumeration of administrative regions.
var regionCodes = map[string]bool{
	"seoul": true, "busan": true, "daegu": true, "incheon": true,
	"gwangju": true, "daejeon": true, "ulsan": true, "sejong": true,
	"gyeonggi": true, "gangwon": true, "chungbuk": true, "chungnam": true,
	"jeonbuk": true, "jeonnam": true, "gyeongbuk": true, "gyeongnam": true,
	"jeju": true,
}

// ValidRegion reports whether code is a known administrative region.
func ValidRegion(code string) bool { return regionCodes[code] }

// Salary is one of five ordered tiers (1..5); tier 0 is unset.
type Salary struct {
	Tier int `json:"tier"`
}

const (
	TierOne   = 1
	TierTwo   = 2
	TierThree = 3
	TierFour  = 4
	TierFive  = 5
)

func (Salary) Dimension() Dimension { return DimSalary }
func (Salary) sealedAttribute()     {}
func (s Salary) Unset() bool        { return s.Tier == 0 }

// MatchAttribute reports whether a respondent's declared attribute satisfies
// a panel's required attribute. Both sides must carry a value: an unset
// respondent attribute satisfies nothing. Ages compare by cohort bucket,
// everything else by equality.
func MatchAttribute(respondent, required Attribute) bool {
	if respondent == nil || required == nil {
		return false
	}
	if respondent.Dimension() != required.Dimension() {
		return false
	}
	if respondent.Unset() || required.Unset() {
		return false
	}

	switch req := required.(type) {
	case Age:
		got := respondent.(Age).bucket()
		want := req.bucket()
		return got >= 0 && got == want
	case Gender:
		return respondent.(Gender).Value == req.Value
	case Region:
		return respondent.(Region).Value == req.Value
	case Salary:
		return respondent.(Salary).Tier == req.Tier
	}
	return false
}

// Eligible reports whether the respondent's attribute set satisfies every
// dimension the panel declares. Dimensions absent from the panel are not
// checked.
func Eligible(respondent Attributes, panel *Panel) bool {
	for _, required := range panel.Attributes {
		declared := respondent.find(required.Dimension())
		if declared == nil || !MatchAttribute(declared, required) {
			return false
		}
	}
	return true
}

// FindEligiblePanel returns the first panel, in declaration order, whose
// attribute requirements the respondent satisfies. Declaration order is the
// tie-break when several panels overlap.
func FindEligiblePanel(respondent Attributes, panels []*Panel) *Panel {
	for _, p := range panels {
		if Eligible(respondent, p) {
			return p
		}
	}
	return nil
}

// Attributes is an ordered attribute set with at most one value per dimension.
type Attributes []Attribute

func (as Attributes) find(d Dimension) Attribute {
	for _, a := range as {
		if a.Dimension() == d {
			return a
		}
	}
	return nil
}

// Validate rejects duplicate dimensions and unknown enum values.
func (as Attributes) Validate() error {
	seen := map[Dimension]bool{}
	for _, a := range as {
		d := a.Dimension()
		if seen[d] {
			return fmt.Errorf("duplicate %s attribute", d)
		}
		seen[d] = true

		switch v := a.(type) {
		case Gender:
			if v.Value != "" && v.Value != GenderMale && v.Value != GenderFemale {
				return fmt.Errorf("unknown gender %q", v.Value)
			}
		case Region:
			if v.Value != "" && !ValidRegion(v.Value) {
				return fmt.Errorf("unknown region %q", v.Value)
			}
		case Salary:
			if v.Tier < 0 || v.Tier > TierFive {
				return fmt.Errorf("salary tier %d out of range", v.Tier)
			}
		}
	}
	return nil
}

func (a Age) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type  Dimension `json:"type"`
		Value *int      `json:"value,omitempty"`
		Min   *int      `json:"min,omitempty"`
		Max   *int      `json:"max,omitempty"`
	}
	return json.Marshal(wire{Type: DimAge, Value: a.Value, Min: a.Min, Max: a.Max})
}

func (g Gender) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type  Dimension `json:"type"`
		Value string    `json:"value,omitempty"`
	}
	return json.Marshal(wire{Type: DimGender, Value: g.Value})
}

func (r Region) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type  Dimension `json:"type"`
		Value string    `json:"value,omitempty"`
	}
	return json.Marshal(wire{Type: DimRegion, Value: r.Value})
}

func (s Salary) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type Dimension `json:"type"`
		Tier int       `json:"tier,omitempty"`
	}
	return json.Marshal(wire{Type: DimSalary, Tier: s.Tier})
}

// UnmarshalJSON decodes a list of tagged attribute objects.
func (as *Attributes) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}

	out := make(Attributes, 0, len(raws))
	for i, raw := range raws {
		var tag struct {
			Type Dimension `json:"type"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			return fmt.Errorf("attribute %d: %w", i, err)
		}

		switch tag.Type {
		case DimAge:
			var a Age
			if err := json.Unmarshal(raw, &a); err != nil {
				return fmt.Errorf("attribute %d: %w", i, err)
			}
			out = append(out, a)
		case DimGender:
			var g Gender
			if err := json.Unmarshal(raw, &g); err != nil {
				return fmt.Errorf("attribute %d: %w", i, err)
			}
			out = append(out, g)
		case DimRegion:
			var r Region
			if err := json.Unmarshal(raw, &r); err != nil {
				return fmt.Errorf("attribute %d: %w", i, err)
			}
			out = append(out, r)
		case DimSalary:
			var s Salary
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("attribute %d: %w", i, err)
			}
			out = append(out, s)
		default:
			return fmt.Errorf("attribute %d: unknown type %q", i, tag.Type)
		}
	}

	*as = out
	return nil
}
