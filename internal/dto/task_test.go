package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueAtUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    *time.Time
		wantErr bool
	}{
		{
			name:    "date only",
			payload: `{"due_date": "2026-02-19"}`,
			want:    ptr(time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:    "rfc3339",
			payload: `{"due_date": "2026-02-19T15:30:00Z"}`,
			want:    ptr(time.Date(2026, 2, 19, 15, 30, 0, 0, time.UTC)),
		},
		{
			name:    "null",
			payload: `{"due_date": null}`,
			want:    nil,
		},
		{
			name:    "empty string",
			payload: `{"due_date": ""}`,
			want:    nil,
		},
		{
			name:    "garbage",
			payload: `{"due_date": "19.02.2026"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				DueDate DueAt `json:"due_date"`
			}
			err := json.Unmarshal([]byte(tt.payload), &body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, body.DueDate.Ptr())
				return
			}
			require.NotNil(t, body.DueDate.Ptr())
			assert.True(t, body.DueDate.Ptr().Equal(*tt.want))
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }
