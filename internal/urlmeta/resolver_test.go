package urlmeta

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/brandpulse/internal/domain"
	"go.uber.org/zap"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare domain gets https", "example.com", "https://example.com", false},
		{"existing scheme preserved", "http://example.com/page", "http://example.com/page", false},
		{"https passthrough", "https://www.acme.io", "https://www.acme.io", false},
		{"surrounding whitespace trimmed", "  example.com  ", "https://example.com", false},
		{"empty input rejected", "", "", true},
		{"plain garbage rejected", "not a url", "", true},
		{"dotless host rejected", "http://localhost", "", true},
		{"scheme only rejected", "https://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidURL))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "acme.com", DomainOf("https://www.acme.com/about"))
	assert.Equal(t, "acme.com", DomainOf("https://acme.com"))
	assert.Equal(t, "website", DomainOf(""))
}

func TestResolve(t *testing.T) {
	r := NewResolver("demo", zap.NewNop())

	meta, err := r.Resolve("www.acme.com")
	require.NoError(t, err)

	assert.Equal(t, "https://www.acme.com", meta.NormalizedURL)
	assert.Equal(t, "acme.com", meta.Domain)
	assert.Contains(t, meta.FaviconURL, "www.acme.com")
	assert.Contains(t, meta.ScreenshotURL, "access_key=demo")
	assert.Contains(t, meta.ScreenshotURL, "width=1200")
	assert.NotEmpty(t, meta.SocialProfiles)
}

func TestResolve_InvalidInput(t *testing.T) {
	r := NewResolver("demo", zap.NewNop())

	_, err := r.Resolve("not a url")
	assert.True(t, errors.Is(err, domain.ErrInvalidURL))
}

func TestGuessProfiles(t *testing.T) {
	profiles := GuessProfiles("acme.com")
	require.Len(t, profiles, 2)
	assert.Equal(t, "instagram", profiles[0].Platform)
	assert.Equal(t, "acme", profiles[0].Username)
	assert.Equal(t, "https://instagram.com/acme", profiles[0].URL)
	assert.Equal(t, "twitter", profiles[1].Platform)

	assert.Nil(t, GuessProfiles(""))
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.instagram.com/acme", "instagram"},
		{"https://twitter.com/acme", "twitter"},
		{"https://x.com/acme", "x"},
		{"https://fb.com/acme", "facebook"},
		{"https://www.linkedin.com/company/acme", "linkedin"},
		{"https://youtu.be/abc", "youtube"},
		{"https://acme.com/contact", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectPlatform(tt.link), tt.link)
	}
}

func TestUsernameFromLink(t *testing.T) {
	assert.Equal(t, "acme", usernameFromLink("https://instagram.com/acme"))
	assert.Equal(t, "acme", usernameFromLink("https://twitter.com/@acme"))
	assert.Equal(t, "company", usernameFromLink("https://linkedin.com/company/acme"))
	assert.Equal(t, "", usernameFromLink("https://instagram.com/"))
}
