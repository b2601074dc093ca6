package utils

import (
	"crypto/rand"
	"fmt"
)

// No ambiguous characters (0/O, 1/I) since codes get read out loud and
// typed from phones.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomCode(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// GenerateInviteCode returns the short code participants use to join a
// tontine.
func GenerateInviteCode() string {
	return randomCode(6)
}

// GenerateAccessCode returns a user's personal login code.
func GenerateAccessCode() string {
	return randomCode(8)
}

// BuildInviteLink builds the shareable join URL for a tontine.
func BuildInviteLink(baseURL, tontineID, inviteCode string) string {
	return fmt.Sprintf("%s/join/%s?code=%s", baseURL, tontineID, inviteCode)
}
