package common

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-10 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-49 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTime(tt.t))
		})
	}
}

func TestRenderStatus(t *testing.T) {
	assert.Empty(t, RenderStatus(StatusMsg{}))
	assert.Contains(t, RenderStatus(StatusMsg{Text: "saved"}), "saved")
	assert.Contains(t, RenderStatus(StatusMsg{Text: "ignored", Err: errors.New("boom")}), "boom")
}

func TestSessionViewer(t *testing.T) {
	v := Session{UserId: "u_0001"}.Viewer()
	assert.Equal(t, "u_0001", v.UserId)
	assert.NotEmpty(t, v.RequestId)
}
