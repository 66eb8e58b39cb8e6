package app

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewHotelID builds "<ms timestamp base36>-<8 random base36 chars>" for a
// hotel created from the console. r defaults to crypto/rand.
func NewHotelID(now time.Time, r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	suffix := make([]byte, 0, 8)
	var buf [16]byte
	for len(suffix) < 8 {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return "", fmt.Errorf("hotel id entropy: %w", err)
		}
		for _, b := range buf {
			// 252 = 7*36; rejecting the tail keeps digits uniform
			if b >= 252 {
				continue
			}
			suffix = append(suffix, base36[b%36])
			if len(suffix) == 8 {
				break
			}
		}
	}
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + string(suffix), nil
}
