// Package cipher holds the transforms applied to a message before it is
// stored as chunk data.
package cipher

// XOR combines data with a repeating key. Applying it twice with the same
// key restores data; an empty key returns a copy of data unchanged.
func XOR(data []byte, key string) []byte {
	out := make([]byte, len(data))
	if key == "" {
		copy(out, data)
		return out
	}

	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}

	return out
}
