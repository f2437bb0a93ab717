package utils

import (
	"crypto/rand"
	"math/big"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandText 生成字母数字随机串
func RandText(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(letters)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = letters[i%len(letters)]
			continue
		}
		out[i] = letters[idx.Int64()]
	}
	return string(out)
}
