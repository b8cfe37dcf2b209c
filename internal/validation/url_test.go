package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultHosts = []string{"nestjs-pokedex-api.vercel.app", "raw.githubusercontent.com"}

func TestImageURLValidator(t *testing.T) {
	v := NewImageURLValidator(defaultHosts)

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "api host https", input: "https://nestjs-pokedex-api.vercel.app/images/25.png"},
		{name: "github raw http", input: "http://raw.githubusercontent.com/PokeAPI/sprites/master/25.png"},
		{name: "host case insensitive", input: "https://RAW.githubusercontent.com/x.png"},
		{name: "port ignored", input: "https://raw.githubusercontent.com:443/x.png"},
		{name: "surrounding space", input: "  https://raw.githubusercontent.com/x.png  "},
		{name: "other host", input: "https://evil.example.org/x.png", wantErr: "not allowed"},
		{name: "suffix trick", input: "https://raw.githubusercontent.com.evil.org/x.png", wantErr: "not allowed"},
		{name: "subdomain not implied", input: "https://cdn.raw.githubusercontent.com/x.png", wantErr: "not allowed"},
		{name: "userinfo trick", input: "https://raw.githubusercontent.com@evil.org/x.png", wantErr: "not allowed"},
		{name: "file scheme", input: "file:///etc/passwd", wantErr: "http or https"},
		{name: "javascript", input: "javascript:alert(1)", wantErr: "http or https"},
		{name: "no scheme", input: "raw.githubusercontent.com/x.png", wantErr: "http or https"},
		{name: "empty", input: "", wantErr: "empty"},
		{name: "quotes", input: `https://raw.githubusercontent.com/"x".png`, wantErr: "invalid characters"},
		{name: "traversal", input: "https://raw.githubusercontent.com/a/../b.png", wantErr: "traversal"},
		{name: "too long", input: "https://raw.githubusercontent.com/" + strings.Repeat("a", 2100), wantErr: "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.False(t, v.Allowed(tt.input))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, got)
			assert.True(t, v.Allowed(tt.input))
		})
	}
}

func TestImageURLValidatorEmptyAllowList(t *testing.T) {
	v := NewImageURLValidator([]string{" ", ""})
	assert.Empty(t, v.AllowedHosts)
	assert.False(t, v.Allowed("https://raw.githubusercontent.com/x.png"))
}

func TestValidateBaseURL(t *testing.T) {
	valid := []string{
		"https://nestjs-pokedex-api.vercel.app",
		"http://127.0.0.1:8080",
		"http://localhost:3000/api",
	}
	for _, input := range valid {
		assert.NoError(t, ValidateBaseURL(input), input)
	}

	invalid := []string{
		"",
		"ftp://example.org",
		"https://",
		"https://api.example.org/?page=1",
		"https://api.example.org/#top",
		"http://host:notaport",
	}
	for _, input := range invalid {
		assert.Error(t, ValidateBaseURL(input), input)
	}
}
