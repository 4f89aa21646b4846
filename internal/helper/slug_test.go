package helper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple name", "My Company", "my-company"},
		{"already a slug", "acme-inc", "acme-inc"},
		{"diacritics folded", "Café Münster", "cafe-munster"},
		{"punctuation collapsed", "Acme, Inc. (EU)!", "acme-inc-eu"},
		{"leading and trailing junk", "  --Acme--  ", "acme"},
		{"digits kept", "Team 42", "team-42"},
		{"empty input", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
