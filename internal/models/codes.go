package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateCode builds a display identifier of the form
// <prefix><4-digit year><n random digits>, e.g. A202673920184.
// These codes are shown to users and printed on documents; they are
// not primary keys.
func GenerateCode(prefix string, digits int) string {
	code := make([]byte, digits)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			n = big.NewInt(int64(time.Now().UnixNano() % 10))
		}
		code[i] = byte('0' + n.Int64())
	}
	return fmt.Sprintf("%s%d%s", prefix, time.Now().Year(), code)
}
