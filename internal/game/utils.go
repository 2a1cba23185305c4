package game

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
)

// GenerateRoomCode draws a room code from rng, or from crypto/rand when rng
// is nil
func GenerateRoomCode(rng *rand.Rand) string {
	code := make([]byte, RoomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[randomIndex(rng, len(RoomCodeChars))]
	}
	return string(code)
}

func randomIndex(rng *rand.Rand, n int) int {
	if rng != nil {
		return rng.Intn(n)
	}
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return rand.Intn(n)
	}
	return int(v.Int64())
}

// GetUniqueRoomCode generates a room code for which exists reports false
func GetUniqueRoomCode(rng *rand.Rand, exists func(code string) bool) string {
	for {
		code := GenerateRoomCode(rng)
		if !exists(code) {
			return code
		}
	}
}

// OrdinalPermutation returns a uniformly random permutation of 1..n
func OrdinalPermutation(n int, rng *rand.Rand) []int {
	order := rng.Perm(n)
	for i := range order {
		order[i]++
	}
	return order
}

// NewSeededRand creates a generator seeded from crypto/rand
func NewSeededRand() *rand.Rand {
	n, err := crand.Int(crand.Reader, big.NewInt(1<<62))
	if err != nil {
		return rand.New(rand.NewSource(rand.Int63()))
	}
	return rand.New(rand.NewSource(n.Int64()))
}
