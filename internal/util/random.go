// Package util provides utility functions for the coach bot.
package util

import (
	"math/rand/v2"
	"strings"
)

// GenerateRandomID generates a random ID with the specified prefix and hex length.
// The returned ID will be in the format: "{prefix}{hex_string}".
func GenerateRandomID(prefix string, hexLength int) string {
	return prefix + GenerateRandomHex(hexLength)
}

// GenerateRandomHex generates a random hexadecimal string of the specified length.
// Uses math/rand/v2; IDs are identifiers, not secrets.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	const hexChars = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		builder.WriteByte(hexChars[rand.IntN(16)])
	}

	return builder.String()
}

// GenerateUserID generates a unique user record ID with "u_" prefix.
func GenerateUserID() string {
	return GenerateRandomID("u_", 32)
}

// GenerateGoalID generates a unique goal record ID with "g_" prefix.
func GenerateGoalID() string {
	return GenerateRandomID("g_", 32)
}

// GenerateCheckInID generates a unique check-in record ID with "c_" prefix.
func GenerateCheckInID() string {
	return GenerateRandomID("c_", 32)
}
