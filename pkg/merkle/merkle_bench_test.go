package merkle

import (
	"fmt"
	"testing"
)

// BenchmarkBuildDistributionTree benchmarks tree construction with various sizes
func BenchmarkBuildDistributionTree(b *testing.B) {
	sizes := []int{100, 1_000, 10_000, 100_000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Entries_%d", size), func(b *testing.B) {
			entries := createTestEntries(size)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, _ = BuildDistributionTree(entries)
			}
		})
	}
}

// BenchmarkProofGeneration benchmarks proof generation
func BenchmarkProofGeneration(b *testing.B) {
	sizes := []int{100, 1_000, 10_000}

	for _, size := range sizes {
		entries := createTestEntries(size)
		tree, _ := BuildDistributionTree(entries)

		b.Run(fmt.Sprintf("Entries_%d", size), func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, _ = tree.ProofFor(uint64(i % size))
			}
		})
	}
}

// BenchmarkVerifyProof benchmarks proof verification
func BenchmarkVerifyProof(b *testing.B) {
	entries := createTestEntries(10_000)
	tree, _ := BuildDistributionTree(entries)
	entry := entries[4242]
	proof, _ := tree.ProofFor(entry.Index)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = VerifyProof(entry.Index, entry.Account, entry.Amount, proof, tree.Root)
	}
}
