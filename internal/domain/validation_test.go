package domain

import (
	"strings"
	"testing"
	"time"
)

func TestValidateReportsFirstViolationPerField(t *testing.T) {
	long := strings.Repeat("x", 101)
	verr := Validate(
		Field{Name: "name", Rules: []Rule{Required(""), MaxLen("", 100)}},
		Field{Name: "title", Rules: []Rule{Required(long), MaxLen(long, 100)}},
		Field{Name: "started_at", Rules: []Rule{RequiredTime(time.Time{})}},
	)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if verr.Fields["name"] != "required" {
		t.Fatalf("unexpected name message %q", verr.Fields["name"])
	}
	if verr.Fields["title"] != "must be 100 characters or fewer" {
		t.Fatalf("unexpected title message %q", verr.Fields["title"])
	}
	if verr.Fields["started_at"] != "required" {
		t.Fatalf("unexpected started_at message %q", verr.Fields["started_at"])
	}
}

func TestValidateCleanInputReturnsNil(t *testing.T) {
	reps := 10
	weight := 102.5
	verr := Validate(
		Field{Name: "name", Rules: []Rule{Required("Bench Press"), MaxLen("Bench Press", 100)}},
		Field{Name: "reps", Rules: []Rule{IntRange(&reps, 0, 999)}},
		Field{Name: "weight", Rules: []Rule{DecimalRange(&weight, 0, 9999.99), TwoDecimalPlaces(&weight)}},
	)
	if verr != nil {
		t.Fatalf("expected nil, got %v", verr.Fields)
	}
}

func TestOptionalRulesPassOnNil(t *testing.T) {
	verr := Validate(
		Field{Name: "reps", Rules: []Rule{IntRange(nil, 0, 999)}},
		Field{Name: "weight", Rules: []Rule{DecimalRange(nil, 0, 9999.99), TwoDecimalPlaces(nil)}},
		Field{Name: "name", Rules: []Rule{RequiredName(nil), MaxLenOpt(nil, 100)}},
	)
	if verr != nil {
		t.Fatalf("expected nil, got %v", verr.Fields)
	}
}

func TestNumericRangeRules(t *testing.T) {
	tooMany := 1000
	if verr := Validate(Field{Name: "reps", Rules: []Rule{IntRange(&tooMany, 0, 999)}}); verr == nil {
		t.Fatal("expected reps range violation")
	}

	negative := -1.0
	if verr := Validate(Field{Name: "weight", Rules: []Rule{DecimalRange(&negative, 0, 9999.99)}}); verr == nil {
		t.Fatal("expected weight range violation")
	}

	precise := 100.255
	if verr := Validate(Field{Name: "weight", Rules: []Rule{TwoDecimalPlaces(&precise)}}); verr == nil {
		t.Fatal("expected precision violation")
	}
}

func TestValidID(t *testing.T) {
	if rule := ValidID("not-a-uuid"); rule.OK {
		t.Fatal("expected invalid id to fail")
	}
	if rule := ValidID("8b8f7a44-51c5-4a5f-9a4e-2f3d7c0a1b2c"); !rule.OK {
		t.Fatal("expected uuid to pass")
	}
}
