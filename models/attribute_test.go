// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"testing"
)

func intPtr(n int) *int { return &n }

func ageValue(v int) Age        { return Age{Value: intPtr(v)} }
func ageRange(min, max int) Age { return Age{Min: intPtr(min), Max: intPtr(max)} }

func TestMatchAttribute_AgeBuckets(t *testing.T) {
	tests := []struct {
		name       string
		respondent Attribute
		required   Attribute
		want       bool
	}{
		{"specific age in range", ageValue(25), ageRange(18, 29), true},
		{"specific age outside range", ageValue(35), ageRange(18, 29), false},
		{"boundary low", ageValue(18), ageRange(18, 29), true},
		{"boundary high", ageValue(29), ageRange(18, 29), true},
		{"same specific age", ageValue(42), ageValue(40), true}, // same cohort
		{"different cohorts", ageValue(42), ageValue(52), false},
		{"minor cohort", ageValue(15), ageRange(0, 17), true},
		{"senior cohort", ageValue(85), ageRange(70, 100), true},
		{"range matches itself", ageRange(30, 39), ageRange(30, 39), true},
		{"ranges from different cohorts", ageRange(30, 39), ageRange(40, 49), false},
		{"non-cohort range never matches", ageRange(20, 50), ageRange(18, 29), false},
		{"unset respondent", Age{}, ageRange(18, 29), false},
		{"unset required", ageValue(25), Age{}, false},
		{"min without max is unset", Age{Min: intPtr(18)}, ageRange(18, 29), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchAttribute(tt.respondent, tt.required); got != tt.want {
				t.Errorf("MatchAttribute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchAttribute_LegacySeniorRange(t *testing.T) {
	// The historical [70,79] declaration is a bucket of its own: it matches
	// another [70,79] but not the canonical [70,100] cohort, and no specific
	// age reduces to it.
	legacy := ageRange(70, 79)
	canonical := ageRange(70, 100)

	if !MatchAttribute(legacy, legacy) {
		t.Error("legacy [70,79] should match itself")
	}
	if MatchAttribute(legacy, canonical) {
		t.Error("legacy [70,79] should not match canonical [70,100]")
	}
	if MatchAttribute(canonical, legacy) {
		t.Error("canonical [70,100] should not match legacy [70,79]")
	}
	if MatchAttribute(ageValue(75), legacy) {
		t.Error("specific age 75 should not reduce to the legacy bucket")
	}
	if !MatchAttribute(ageValue(75), canonical) {
		t.Error("specific age 75 should match the canonical [70,100] cohort")
	}
}

func TestMatchAttribute_EnumDimensions(t *testing.T) {
	tests := []struct {
		name       string
		respondent Attribute
		required   Attribute
		want       bool
	}{
		{"gender match", Gender{Value: GenderFemale}, Gender{Value: GenderFemale}, true},
		{"gender mismatch", Gender{Value: GenderMale}, Gender{Value: GenderFemale}, false},
		{"gender unset respondent", Gender{}, Gender{Value: GenderMale}, false},
		{"region match", Region{Value: "seoul"}, Region{Value: "seoul"}, true},
		{"region mismatch", Region{Value: "busan"}, Region{Value: "seoul"}, false},
		{"salary match", Salary{Tier: TierThree}, Salary{Tier: TierThree}, true},
		{"salary mismatch", Salary{Tier: TierOne}, Salary{Tier: TierFive}, false},
		{"salary unset required", Salary{Tier: TierTwo}, Salary{}, false},
		{"cross dimension", Gender{Value: GenderMale}, Region{Value: "seoul"}, false},
		{"nil required", Gender{Value: GenderMale}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchAttribute(tt.respondent, tt.required); got != tt.want {
				t.Errorf("MatchAttribute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEligible(t *testing.T) {
	panel := &Panel{
		ID:   "p1",
		Name: "Seoul women 20s",
		Attributes: Attributes{
			ageRange(18, 29),
			Gender{Value: GenderFemale},
			Region{Value: "seoul"},
		},
	}

	tests := []struct {
		name       string
		respondent Attributes
		want       bool
	}{
		{
			"all dimensions satisfied",
			Attributes{ageValue(24), Gender{Value: GenderFemale}, Region{Value: "seoul"}},
			true,
		},
		{
			"extra dimension ignored",
			Attributes{ageValue(24), Gender{Value: GenderFemale}, Region{Value: "seoul"}, Salary{Tier: TierTwo}},
			true,
		},
		{
			"one dimension fails",
			Attributes{ageValue(24), Gender{Value: GenderFemale}, Region{Value: "busan"}},
			false,
		},
		{
			"dimension missing",
			Attributes{ageValue(24), Gender{Value: GenderFemale}},
			false,
		},
		{
			"empty respondent",
			Attributes{},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eligible(tt.respondent, panel); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEligible_EmptyPanel(t *testing.T) {
	// A panel with no attribute requirements accepts anyone.
	panel := &Panel{ID: "open", Name: "Everyone"}
	if !Eligible(Attributes{}, panel) {
		t.Error("panel without requirements should accept an empty respondent")
	}
	if !Eligible(Attributes{ageValue(99)}, panel) {
		t.Error("panel without requirements should accept any respondent")
	}
}

func TestFindEligiblePanel_DeclarationOrder(t *testing.T) {
	broad := &Panel{ID: "broad", Attributes: Attributes{Gender{Value: GenderMale}}}
	narrow := &Panel{ID: "narrow", Attributes: Attributes{Gender{Value: GenderMale}, Region{Value: "seoul"}}}

	respondent := Attributes{Gender{Value: GenderMale}, Region{Value: "seoul"}}

	// Both panels are eligible; the first declared wins regardless of
	// specificity.
	if got := FindEligiblePanel(respondent, []*Panel{broad, narrow}); got == nil || got.ID != "broad" {
		t.Errorf("expected first declared panel 'broad', got %v", got)
	}
	if got := FindEligiblePanel(respondent, []*Panel{narrow, broad}); got == nil || got.ID != "narrow" {
		t.Errorf("expected first declared panel 'narrow', got %v", got)
	}

	// No match at all
	if got := FindEligiblePanel(Attributes{Gender{Value: GenderFemale}}, []*Panel{broad, narrow}); got != nil {
		t.Errorf("expected no panel, got %v", got.ID)
	}

	// Empty panel list
	if got := FindEligiblePanel(respondent, nil); got != nil {
		t.Errorf("expected no panel for empty list, got %v", got.ID)
	}
}

func TestAttributesValidate(t *testing.T) {
	tests := []struct {
		name    string
		attrs   Attributes
		wantErr bool
	}{
		{"valid full set", Attributes{ageValue(30), Gender{Value: GenderMale}, Region{Value: "jeju"}, Salary{Tier: TierFour}}, false},
		{"empty set", Attributes{}, false},
		{"duplicate dimension", Attributes{ageValue(30), ageRange(18, 29)}, true},
		{"unknown gender", Attributes{Gender{Value: "other"}}, true},
		{"unknown region", Attributes{Region{Value: "atlantis"}}, true},
		{"salary tier too high", Attributes{Salary{Tier: 6}}, true},
		{"salary tier negative", Attributes{Salary{Tier: -1}}, true},
		{"unset values pass", Attributes{Gender{}, Region{}, Salary{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.attrs.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAttributesJSONRoundTrip(t *testing.T) {
	original := Attributes{
		ageRange(18, 29),
		Gender{Value: GenderFemale},
		Region{Value: "gyeonggi"},
		Salary{Tier: TierTwo},
	}

	encoded, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Attributes
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if len(decoded) != len(original) {
		t.Fatalf("expected %d attributes, got %d", len(original), len(decoded))
	}
	for i, a := range decoded {
		if a.Dimension() != original[i].Dimension() {
			t.Errorf("attribute %d: dimension = %s, want %s", i, a.Dimension(), original[i].Dimension())
		}
	}

	age, ok := decoded[0].(Age)
	if !ok {
		t.Fatalf("expected Age at position 0, got %T", decoded[0])
	}
	if age.Min == nil || *age.Min != 18 || age.Max == nil || *age.Max != 29 {
		t.Errorf("age range not preserved: %+v", age)
	}
}

func TestAttributesUnmarshalUnknownType(t *testing.T) {
	var attrs Attributes
	err := json.Unmarshal([]byte(`[{"type":"height","value":180}]`), &attrs)
	if err == nil {
		t.Error("expected error for unknown attribute type")
	}
}
