package counter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountHTML(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		selector string
		want     int
	}{
		{"no badges", `<div class="profile"></div>`, DefaultSelector, 0},
		{"three badges", `<div class="profile-badge"></div><div class="profile-badge x"></div><div class="profile-badge"></div>`, DefaultSelector, 3},
		{"span is not a card", `<span class="profile-badge"></span><div class="profile-badge"></div>`, DefaultSelector, 1},
		{"nested cards counted", `<div class="profile-badge"><div class="profile-badge"></div></div>`, DefaultSelector, 2},
		{"similar class ignored", `<div class="profile-badges"></div>`, DefaultSelector, 0},
		{"empty document", ``, DefaultSelector, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountHTML(tt.html, tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountHTML_InvalidSelector(t *testing.T) {
	_, err := CountHTML(`<div></div>`, "div[")
	assert.Error(t, err)
}
