package docsynth_test

import (
	"testing"

	"github.com/fwojciec/docsynth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://Docs.Example.COM/Guide", "https://docs.example.com/Guide"},
		{"strips fragment", "https://docs.example.com/guide#install", "https://docs.example.com/guide"},
		{"removes trailing slash", "https://docs.example.com/guide/", "https://docs.example.com/guide"},
		{"keeps root slash", "https://docs.example.com/", "https://docs.example.com/"},
		{"adds root slash", "https://docs.example.com", "https://docs.example.com/"},
		{"keeps query", "https://docs.example.com/search?q=x", "https://docs.example.com/search?q=x"},
		{"collapses repeated trailing slashes", "https://docs.example.com/a//", "https://docs.example.com/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := docsynth.CanonicalURL(tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalURL_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"HTTPS://Docs.Example.COM/Guide/#top",
		"https://docs.example.com",
		"http://EXAMPLE.com/a/b/?x=1#frag",
		"https://docs.example.com/%7Euser/",
	}

	for _, in := range inputs {
		once, err := docsynth.CanonicalURL(in)
		require.NoError(t, err)
		twice, err := docsynth.CanonicalURL(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestCanonicalURL_Invalid(t *testing.T) {
	t.Parallel()

	_, err := docsynth.CanonicalURL("http://[::1")

	assert.Equal(t, docsynth.EINVALID, docsynth.ErrorCode(err))
}

func TestIsAbsoluteURL(t *testing.T) {
	t.Parallel()

	assert.True(t, docsynth.IsAbsoluteURL("https://docs.example.com/"))
	assert.True(t, docsynth.IsAbsoluteURL("http://localhost:8080"))
	assert.False(t, docsynth.IsAbsoluteURL("/docs/guide"))
	assert.False(t, docsynth.IsAbsoluteURL("docs.example.com"))
	assert.False(t, docsynth.IsAbsoluteURL("ftp://example.com/"))
}
