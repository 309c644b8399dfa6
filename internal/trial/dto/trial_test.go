package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalInt(t *testing.T) {
	tests := []struct {
		body    string
		want    *int
		wantErr bool
	}{
		{`{"age": 42}`, intPtr(42), false},
		{`{"age": "42"}`, intPtr(42), false},
		{`{"age": ""}`, nil, false},
		{`{"age": null}`, nil, false},
		{`{}`, nil, false},
		{`{"age": "forty"}`, nil, true},
		{`{"age": -1}`, nil, true},
		{`{"age": 150}`, intPtr(150), false},
		{`{"age": 151}`, nil, true},
		{`{"age": 1e300}`, nil, true},
		{`{"filters": {"minAge": "1e300"}}`, nil, true},
	}
	for _, tt := range tests {
		var req GenerateRequest
		err := json.Unmarshal([]byte(tt.body), &req)
		if tt.wantErr {
			assert.Error(t, err, tt.body)
			continue
		}
		require.NoError(t, err, tt.body)
		assert.Equal(t, tt.want, req.Age.Value, tt.body)
	}
}

func intPtr(v int) *int { return &v }
