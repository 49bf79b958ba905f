package webutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalDomain(t *testing.T) {
	cases := map[string]string{
		"https://www.Acme.com/path":      "acme.com",
		"http://acme.com":                "acme.com",
		"acme.com/path":                  "acme.com",
		"https://acme.com:8080/":         "acme.com",
		"https://sub.acme.com":           "sub.acme.com",
		"  https://www.spaces.com  ":     "spaces.com",
		"":                               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalDomain(in), "input %q", in)
	}
}

func TestCanonicalizeURL(t *testing.T) {
	t.Run("strips tracking params", func(t *testing.T) {
		got := CanonicalizeURL("https://acme.com/page?utm_source=x&utm_medium=y&id=5&gclid=z")
		assert.Equal(t, "https://acme.com/page?id=5", got)
	})

	t.Run("drops fragments", func(t *testing.T) {
		got := CanonicalizeURL("https://acme.com/page#section")
		assert.Equal(t, "https://acme.com/page", got)
	})

	t.Run("lowercases scheme and host only", func(t *testing.T) {
		got := CanonicalizeURL("HTTPS://ACME.COM/MyPage")
		assert.Equal(t, "https://acme.com/MyPage", got)
	})

	t.Run("deterministic query order", func(t *testing.T) {
		a := CanonicalizeURL("https://acme.com/?b=2&a=1")
		b := CanonicalizeURL("https://acme.com/?a=1&b=2")
		assert.Equal(t, a, b)
	})
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://acme.com", BaseURL("https://acme.com/deep/page?q=1"))
	assert.Equal(t, "http://acme.com", BaseURL("http://acme.com"))
}

func TestCleanText(t *testing.T) {
	got := CleanText("  hello\n\n\tworld  again  ")
	assert.Equal(t, "hello world again", got)
}
