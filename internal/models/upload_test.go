package models

import (
	"encoding/json"
	"testing"
	"time"
)

// TestHealthDataUploadDefaults verifies waterIntake and date defaults when the
// fields are omitted.
func TestHealthDataUploadDefaults(t *testing.T) {
	var u HealthDataUpload
	raw := `{"steps": 8000, "sleepHours": 7.5, "heartRate": 68, "calories": 2100}`
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if u.Water() != DefaultWaterIntake {
		t.Errorf("Water() = %v, want %v", u.Water(), DefaultWaterIntake)
	}
	now := time.Date(2025, 11, 5, 13, 0, 0, 0, time.UTC)
	if got := u.Day(now); got != "2025-11-05" {
		t.Errorf("Day() = %q, want 2025-11-05", got)
	}
	if err := u.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

// TestHealthDataUploadExplicit verifies explicit water and both date formats.
func TestHealthDataUploadExplicit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"date only", `{"waterIntake": 3.25, "date": "2025-10-30"}`, "2025-10-30"},
		{"rfc3339", `{"waterIntake": 3.25, "date": "2025-10-30T21:15:00+02:00"}`, "2025-10-30"},
		{"empty date", `{"waterIntake": 3.25, "date": ""}`, "2025-11-05"},
	}
	now := time.Date(2025, 11, 5, 13, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u HealthDataUpload
			if err := json.Unmarshal([]byte(tt.raw), &u); err != nil {
				t.Fatalf("unmarshal error: %v", err)
			}
			if u.Water() != 3.25 {
				t.Errorf("Water() = %v, want 3.25", u.Water())
			}
			if got := u.Day(now); got != tt.want {
				t.Errorf("Day() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestUploadDateInvalid verifies a malformed date fails decoding.
func TestUploadDateInvalid(t *testing.T) {
	var u HealthDataUpload
	if err := json.Unmarshal([]byte(`{"date": "30.10.2025"}`), &u); err == nil {
		t.Fatal("expected error for invalid date")
	}
}

// TestUploadDateMarshal verifies the date round-trips in date-only form.
func TestUploadDateMarshal(t *testing.T) {
	d := UploadDate{Time: time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(data) != `"2025-01-02"` {
		t.Errorf("got %s, want \"2025-01-02\"", data)
	}
}

// TestHealthDataUploadValidate verifies negative readings are rejected.
func TestHealthDataUploadValidate(t *testing.T) {
	neg := -1.0
	cases := []HealthDataUpload{
		{Steps: -5},
		{SleepHours: -1},
		{HeartRate: -60},
		{Calories: -1},
		{WaterIntake: &neg},
	}
	for i, u := range cases {
		if err := u.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
