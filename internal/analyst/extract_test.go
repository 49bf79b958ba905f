package analyst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmail(t *testing.T) {
	t.Run("finds a plain address", func(t *testing.T) {
		got := ExtractEmail("Reach us at info@acmeroofing.com for a quote")
		assert.Equal(t, "info@acmeroofing.com", got)
	})

	t.Run("skips noreply and placeholder addresses", func(t *testing.T) {
		text := "noreply@acme.com no-reply@acme.com user@example.com then owner@realbiz.io"
		assert.Equal(t, "owner@realbiz.io", ExtractEmail(text))
	})

	t.Run("skips minified asset names", func(t *testing.T) {
		text := "background:url(logo@2x.png) contact sales@bizsite.net"
		assert.Equal(t, "sales@bizsite.net", ExtractEmail(text))
	})

	t.Run("empty when nothing plausible", func(t *testing.T) {
		assert.Equal(t, "", ExtractEmail("call us at 555-0100"))
		assert.Equal(t, "", ExtractEmail("noreply@site.com"))
	})
}
