package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GenerateRequest is the body of POST /api/generate
type GenerateRequest struct {
	Text         string       `json:"text"`
	Age          OptionalInt  `json:"age"`
	Location     string       `json:"location"`
	Intervention string       `json:"intervention"`
	PageToken    string       `json:"pageToken"`
	PageSize     int          `json:"pageSize"`
	SeenIDs      []string     `json:"seenIds"`
	Filters      SearchFilter `json:"filters"`
}

type SearchFilter struct {
	Status            []string    `json:"status"`
	Phase             []string    `json:"phase"`
	Gender            string      `json:"gender"`
	MinAge            OptionalInt `json:"minAge"`
	MaxAge            OptionalInt `json:"maxAge"`
	HealthyVolunteers *bool       `json:"healthyVolunteers"`
}

// maxAgeYears bounds every age field.
const maxAgeYears = 150

// OptionalInt accepts a JSON number, a numeric string, an empty string or null.
type OptionalInt struct {
	Value *int
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			o.Value = nil
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > maxAgeYears {
		return fmt.Errorf("must be a number between 0 and %d", maxAgeYears)
	}
	v := int(f)
	o.Value = &v
	return nil
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(*o.Value)), nil
}
