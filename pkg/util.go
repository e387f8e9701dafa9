package pkg

import (
	"crypto/rand"
	"errors"
	"math"
	"unsafe"
)

const randStringChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// BytesToString converts bytes slice to a string without extra allocation
func BytesToString(buf []byte) string {
	return *(*string)(unsafe.Pointer(&buf))
}

// GenerateRandomString returns a securely generated random string of the given length.
// It will return an error if the system's secure random number generator fails to
// function correctly, in which case the caller should not continue.
func GenerateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid random string length")
	}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	for i := range b {
		b[i] = randStringChars[int(b[i])%len(randStringChars)]
	}

	return BytesToString(b), nil
}

// RoundToTwoDecimals rounds half away from zero, e.g. 24.675 -> 24.68
func RoundToTwoDecimals(val float64) float64 {
	return math.Round(val*100) / 100
}
