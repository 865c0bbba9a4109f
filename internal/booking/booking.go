// Package booking builds the WhatsApp links behind the "Book Now" buttons.
package booking

import (
	"fmt"
	"net/url"
	"strings"
)

// WhatsAppURL returns a wa.me link that opens a chat with a prefilled booking message.
// number may contain spaces, dashes or a leading '+'; only digits are kept.
func WhatsAppURL(number, packageName, price string) string {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	msg := fmt.Sprintf("Hi! I'm interested in the %s package (%s). Could you share more details?", packageName, price)
	return "https://wa.me/" + digits.String() + "?text=" + url.QueryEscape(msg)
}
