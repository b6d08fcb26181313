// Package email normalises profile contact addresses.
package email

import (
	"net/mail"
	"strings"
)

// Normalize trims and lowercases the domain part, leaving the local part as
// typed.
func Normalize(addr string) string {
	addr = strings.TrimSpace(addr)
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return addr
	}
	return addr[:at] + "@" + strings.ToLower(addr[at+1:])
}

// Valid reports whether addr is a bare address without a display name.
func Valid(addr string) bool {
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return false
	}
	return parsed.Address == addr && strings.Contains(addr[strings.LastIndexByte(addr, '@'):], ".")
}
