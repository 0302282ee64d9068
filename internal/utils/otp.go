package utils

import (
	"crypto/rand"
	"math/big"
)

const otpCharset = "0123456789"

// GenerateOTP returns a random numeric code of the given length. The first
// digit is never zero so the code is always exactly `length` digits long.
func GenerateOTP(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		lo := 0
		if i == 0 {
			lo = 1
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(otpCharset)-lo)))
		if err != nil {
			// crypto/rand failing means the platform RNG is broken.
			panic(err)
		}
		b[i] = otpCharset[int(n.Int64())+lo]
	}
	return string(b)
}
