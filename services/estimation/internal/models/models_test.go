package models_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"souk/services/estimation/internal/models"
)

func TestParseCategory(t *testing.T) {
	for _, s := range []string{"transport", "tour", "service", "financing"} {
		c, err := models.ParseCategory(s)
		if err != nil || string(c) != s {
			t.Errorf("ParseCategory(%q) = %q, %v", s, c, err)
		}
	}
	for _, s := range []string{"", "Transport", "cleaning", " tour"} {
		if _, err := models.ParseCategory(s); err == nil {
			t.Errorf("ParseCategory(%q) succeeded, want error", s)
		}
	}
}

func TestOfferScore(t *testing.T) {
	if got := (models.Offer{}).Score(); got != 0 {
		t.Errorf("Score() without aiScore = %v, want 0", got)
	}
	s := 4.5
	if got := (models.Offer{AIScore: &s}).Score(); got != 4.5 {
		t.Errorf("Score() = %v, want 4.5", got)
	}
}

func TestPriceBandMidpoint(t *testing.T) {
	if got := (models.PriceBand{Low: 128, High: 200}).Midpoint(); got != 164 {
		t.Errorf("Midpoint() = %v, want 164", got)
	}
	if got := (models.PriceBand{Low: 1, High: 2}).Midpoint(); got != 1.5 {
		t.Errorf("Midpoint() = %v, want 1.5", got)
	}
}

func TestJobSpecJSON_OmitsUnsetFields(t *testing.T) {
	data, err := json.Marshal(models.JobSpec{Description: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"description":"hello"}` {
		t.Errorf("json = %s", data)
	}
}

func TestPriceBandJSON_DistanceOnlyWhenSupplied(t *testing.T) {
	data, _ := json.Marshal(models.PriceBand{Currency: "MAD", Factors: models.Factors{Base: 8, Surge: 1}})
	if strings.Contains(string(data), "distance") {
		t.Errorf("json = %s, distance should be omitted", data)
	}
	km := 10.0
	data, _ = json.Marshal(models.PriceBand{Factors: models.Factors{Distance: &km}})
	if !strings.Contains(string(data), `"distance":10`) {
		t.Errorf("json = %s, want distance", data)
	}
}

func TestJobEstimateBinary(t *testing.T) {
	pax := 2
	in := models.JobEstimate{
		JobID:     "job-1",
		Category:  models.CategoryTour,
		Spec:      models.JobSpec{Description: "tour", Pax: &pax},
		PriceBand: models.PriceBand{Low: 1152, High: 1800, Currency: "MAD"},
		CreatedAt: time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC),
	}
	data, err := in.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var out models.JobEstimate
	if err := out.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if out.JobID != in.JobID || *out.Spec.Pax != 2 || out.PriceBand.High != 1800 || !out.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("round trip = %+v", out)
	}
}
