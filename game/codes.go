package game

import "math/rand"

// Room code alphabet drops I, O, 0 and 1, which read alike on a shared screen.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength      = 6
	maxCodeAttempts = 64
)

// newRoomCode draws codes until one is not taken. Exhausting the attempt
// budget means the code space is too small for the number of live rooms.
func newRoomCode(rng *rand.Rand, taken func(string) bool) (string, error) {
	buf := make([]byte, codeLength)
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		for i := range buf {
			buf[i] = codeAlphabet[rng.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		if !taken(code) {
			return code, nil
		}
	}
	return "", ErrCodesExhausted
}
