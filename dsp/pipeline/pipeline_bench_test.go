package pipeline

import (
	"fmt"
	"testing"

	"github.com/cwbudde/ircab/dsp/core"
	"github.com/cwbudde/ircab/internal/testutil"
)

func BenchmarkProcess(b *testing.B) {
	for _, kernelLen := range []int{48, 2048, 8192} {
		for _, blockSize := range []int{4, 64} {
			b.Run(fmt.Sprintf("k%d/b%d", kernelLen, blockSize), func(b *testing.B) {
				kernel := testutil.ToFloat32(testutil.DecayingKernel(1, kernelLen))
				p := newPipeline(b, newSlots(b, blockSize, kernel...), core.WithBlockSize(blockSize))

				out := stereo(blockSize)
				in := [][]float32{testutil.ToFloat32(testutil.DeterministicNoise(2, 0.5, blockSize))}

				b.ReportAllocs()
				b.ResetTimer()
				for range b.N {
					p.Process(out, in)
				}
			})
		}
	}
}
