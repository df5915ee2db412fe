package internal

import "math/rand/v2"

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// IDLength is the length of batch IDs and in-memory database names. 62^10 values keep
// collisions negligible for both.
const IDLength = 10

// GenerateID returns a random alphanumeric identifier of length n.
func GenerateID(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = idCharset[rand.IntN(len(idCharset))]
	}
	return string(b)
}
