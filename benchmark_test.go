package mnistseq

import (
	"context"
	"fmt"
	"testing"
)

func BenchmarkCompose(b *testing.B) {
	corpus := testCorpus(b, 5, 28)
	for _, mode := range []InterpolationMode{InterpBilinear, InterpNearest, InterpCatmullRom} {
		opts := DefaultCanvasOptions()
		opts.Interpolation = mode
		b.Run(mode.String(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, _, err := Compose(corpus.Images, corpus.Labels, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkGenerate(b *testing.B) {
	corpus := testCorpus(b, 1000, 28)
	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			for b.Loop() {
				_, err := Generate(context.Background(), corpus, GenerateOptions{
					Canvas:     DefaultCanvasOptions(),
					TargetSize: 5000,
					Rand:       seeded(1),
					Workers:    workers,
				})
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
