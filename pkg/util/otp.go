package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OtpCodeLength is the number of digits in a one-time passcode
const OtpCodeLength = 6

// GenerateOtpCode generates a random fixed-length numeric code.
// The code is the sole signup gate, so it must come from crypto/rand.
func GenerateOtpCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
