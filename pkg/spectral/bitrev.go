package spectral

// BitReverse reverses the low `bits` bits of n. n must be below 1<<bits.
func BitReverse(n, bits int) int {
	if bits <= 0 {
		return 0
	}

	reversed := n
	count := bits - 1

	n >>= 1
	for n > 0 {
		reversed = (reversed << 1) | (n & 1)
		count--
		n >>= 1
	}

	return (reversed << count) & ((1 << bits) - 1)
}

// Permute reorders buf into bit-reversed index order in place.
// len(buf) must be a power of two.
func Permute(buf []complex128) {
	bits := log2(len(buf))
	for j := 1; j < len(buf); j++ {
		swapPos := BitReverse(j, bits)
		if j < swapPos {
			buf[j], buf[swapPos] = buf[swapPos], buf[j]
		}
	}
}
