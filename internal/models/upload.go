package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultWaterIntake is used when an upload omits waterIntake (liters).
const DefaultWaterIntake = 2.0

// UploadDate accepts a calendar date "2006-01-02" or an RFC3339 timestamp.
type UploadDate struct {
	time.Time
}

const UploadDateLayout = "2006-01-02"

func (d *UploadDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	return d.Parse(s)
}

func (d UploadDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format(UploadDateLayout))
}

// Parse tries the date-only layout first, then RFC3339.
func (d *UploadDate) Parse(s string) error {
	parsed, err := time.Parse(UploadDateLayout, s)
	if err == nil {
		d.Time = parsed
		return nil
	}
	parsed, err2 := time.Parse(time.RFC3339, s)
	if err2 == nil {
		d.Time = parsed
		return nil
	}
	return fmt.Errorf("cannot parse upload date %q: %w", s, err)
}

// HealthDataUpload is the single-day manual entry JSON body.
type HealthDataUpload struct {
	Steps       float64     `json:"steps"`
	SleepHours  float64     `json:"sleepHours"`
	HeartRate   float64     `json:"heartRate"`
	Calories    float64     `json:"calories"`
	WaterIntake *float64    `json:"waterIntake,omitempty"`
	Date        *UploadDate `json:"date,omitempty"`
}

// Water returns the submitted water intake or the default.
func (u HealthDataUpload) Water() float64 {
	if u.WaterIntake == nil {
		return DefaultWaterIntake
	}
	return *u.WaterIntake
}

// Day returns the submitted date formatted as 2006-01-02, or now's date.
func (u HealthDataUpload) Day(now time.Time) string {
	if u.Date == nil || u.Date.IsZero() {
		return now.Format(UploadDateLayout)
	}
	return u.Date.Format(UploadDateLayout)
}

// Validate rejects negative readings.
func (u HealthDataUpload) Validate() error {
	switch {
	case u.Steps < 0:
		return fmt.Errorf("steps must not be negative")
	case u.SleepHours < 0:
		return fmt.Errorf("sleepHours must not be negative")
	case u.HeartRate < 0:
		return fmt.Errorf("heartRate must not be negative")
	case u.Calories < 0:
		return fmt.Errorf("calories must not be negative")
	case u.Water() < 0:
		return fmt.Errorf("waterIntake must not be negative")
	}
	return nil
}
