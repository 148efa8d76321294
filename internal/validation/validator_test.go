// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/cappi/internal/models"
)

func TestValidateRequestContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		req       models.RequestContext
		wantField string
	}{
		{"valid minimal", models.RequestContext{City: "Cancún"}, ""},
		{"valid full", models.RequestContext{City: "Medellín", Country: "Colombia", BudgetLevel: models.BudgetLuxury, RiskTolerance: models.RiskToleranceLow, PartySize: 2}, ""},
		{"missing city", models.RequestContext{}, "city"},
		{"bad risk tolerance", models.RequestContext{City: "Cancún", RiskTolerance: "YOLO"}, "risk_tolerance"},
		{"bad budget", models.RequestContext{City: "Cancún", BudgetLevel: "CHEAP"}, "budget_level"},
		{"party too large", models.RequestContext{City: "Cancún", PartySize: 51}, "party_size"},
		{"city too long", models.RequestContext{City: strings.Repeat("x", 121)}, "city"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verr := ValidateStruct(&tt.req)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("expected valid, got %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatalf("expected error on %s", tt.wantField)
			}
			if got := verr.Errors()[0].Field(); got != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, got)
			}
		})
	}
}

func TestValidateUnwrapsToInvalidInput(t *testing.T) {
	t.Parallel()

	err := Validate(&models.RequestContext{})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if err.Error() != "city is required" {
		t.Errorf("unexpected message %q", err.Error())
	}

	if err := Validate(&models.RequestContext{City: "Cancún"}); err != nil {
		t.Errorf("expected nil error interface, got %v", err)
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(&models.RequestContext{City: "Cancún", RiskTolerance: "NONE", PartySize: 99})
	if verr == nil {
		t.Fatal("expected errors")
	}
	msg := verr.Error()
	for _, want := range []string{"risk_tolerance must be one of: LOW MEDIUM HIGH", "party_size must be at most 50"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}
