package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const inviteCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomInviteCode returns an uppercase alphanumeric token of length n.
func randomInviteCode(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeChars))))
		if err != nil {
			return "", err
		}
		b[i] = inviteCodeChars[idx.Int64()]
	}
	return string(b), nil
}

// randomNumericCode returns a 4-digit code in the range 1000-9999.
func randomNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
