package krypto

// Zeroize overwrites a sensitive byte slice in place to shorten its lifetime
// in memory.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
