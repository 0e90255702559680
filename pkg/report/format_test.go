package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/report"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		format   report.Format
		expected string
	}{
		{report.FormatAuto, "auto"},
		{report.FormatTerminal, "term"},
		{report.FormatText, "text"},
		{report.FormatJSON, "json"},
		{report.Format(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.format.String())
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected report.Format
		wantErr  bool
	}{
		{"auto", report.FormatAuto, false},
		{"", report.FormatAuto, false},
		{"term", report.FormatTerminal, false},
		{"terminal", report.FormatTerminal, false},
		{"TEXT", report.FormatText, false},
		{"plain", report.FormatText, false},
		{"json", report.FormatJSON, false},
		{"xml", report.FormatAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := report.ParseFormat(tt.input)
			if tt.wantErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
