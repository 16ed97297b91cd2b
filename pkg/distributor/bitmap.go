package distributor

import "fmt"

const wordBits = 64

// claimedBitmap is a packed bit array tracking which entry indices have
// been paid: claimedWords[index/64] & (1 << (index%64)). Bits only ever
// move 0 -> 1 during normal operation; clear exists solely to roll back a
// mark whose transfer failed, inside the same critical section that set it.
type claimedBitmap struct {
	words []uint64
}

// newClaimedBitmap allocates a bitmap covering indices [0, maxIndex].
func newClaimedBitmap(maxIndex uint64) *claimedBitmap {
	return &claimedBitmap{
		words: make([]uint64, maxIndex/wordBits+1),
	}
}

// isSet reports the bit for index. The second return is false when index
// lies outside the bitmap.
func (b *claimedBitmap) isSet(index uint64) (bool, bool) {
	word := index / wordBits
	if word >= uint64(len(b.words)) {
		return false, false
	}
	return b.words[word]&(1<<(index%wordBits)) != 0, true
}

// set marks the bit for index. Caller must have checked the range.
func (b *claimedBitmap) set(index uint64) {
	b.words[index/wordBits] |= 1 << (index % wordBits)
}

// clear unmarks the bit for index. Only used to roll back a failed claim.
func (b *claimedBitmap) clear(index uint64) {
	b.words[index/wordBits] &^= 1 << (index % wordBits)
}

// word returns the packed word at the given word offset.
func (b *claimedBitmap) word(offset uint64) (uint64, bool) {
	if offset >= uint64(len(b.words)) {
		return 0, false
	}
	return b.words[offset], true
}

// snapshot returns a copy of the packed words.
func (b *claimedBitmap) snapshot() []uint64 {
	words := make([]uint64, len(b.words))
	copy(words, b.words)
	return words
}

// restore overwrites the bitmap from a snapshot of the same shape.
func (b *claimedBitmap) restore(words []uint64) error {
	if len(words) != len(b.words) {
		return fmt.Errorf("snapshot has %d words, bitmap has %d", len(words), len(b.words))
	}
	copy(b.words, words)
	return nil
}
