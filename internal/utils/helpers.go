package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"unicode/utf8"
)

const classroomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ClassroomCodeLength is the length of generated join codes.
const ClassroomCodeLength = 6

// GenerateClassroomCode returns a random join code from [A-Z0-9].
func GenerateClassroomCode() (string, error) {
	buf := make([]byte, ClassroomCodeLength)
	max := big.NewInt(int64(len(classroomCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = classroomCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-.]`)

// SanitizeFilename replaces anything outside [A-Za-z0-9_.-] with an underscore.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
