package booking

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppURL(t *testing.T) {
	link := WhatsAppURL("+94 77-123 4567", "Gold", "LKR 90,000")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/94771234567", u.Path)
	assert.Equal(t, "Hi! I'm interested in the Gold package (LKR 90,000). Could you share more details?", u.Query().Get("text"))
}
