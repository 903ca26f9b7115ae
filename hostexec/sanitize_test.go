package hostexec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"clean value unchanged", "8080", "8080"},
		{"clean address unchanged", "192.168.1.0/24", "192.168.1.0/24"},
		{"command chaining stripped", "tcp;rm -rf /", "tcprm -rf /"},
		{"pipe stripped", "80|cat /etc/passwd", "80cat /etc/passwd"},
		{"substitution stripped", "$(reboot)", "reboot"},
		{"backticks stripped", "`id`", "id"},
		{"background and and stripped", "80 && reboot &", "80  reboot "},
		{"braces brackets stripped", "{a}[b]", "ab"},
		{"backslash stripped", "a\\b", "ab"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.in))
		})
	}
}
