package services

import (
	"net/url"
	"strings"
)

// DefaultWhatsAppNumber is used when the whatsapp_number setting is unset.
const DefaultWhatsAppNumber = "6281234567890"

// WhatsAppNumber keeps only digits and rewrites a leading local 0 to 62.
func WhatsAppNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n := b.String()
	if strings.HasPrefix(n, "0") {
		n = "62" + n[1:]
	}
	if n == "" {
		return DefaultWhatsAppNumber
	}
	return n
}

// WhatsAppLink builds a wa.me deep link with a prefilled message.
func WhatsAppLink(number, message string) string {
	link := "https://wa.me/" + WhatsAppNumber(number)
	if message != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	}
	return link
}
