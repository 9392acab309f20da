package domain

import (
	"crypto/rand"
	"time"
)

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderNumber returns ORD-YYMMDD-XXXXXX where the suffix is six random
// base-36 characters. Uniqueness is enforced by the store, not here.
func GenerateOrderNumber(now time.Time) string {
	var buf [6]byte
	_, _ = rand.Read(buf[:])
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return "ORD-" + now.Format("060102") + "-" + string(buf[:])
}
