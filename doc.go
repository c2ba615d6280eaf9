// Package mnistseq synthesizes datasets of digit-sequence images from a
// corpus of single-digit glyphs such as MNIST.
//
// # Overview
//
// Two pieces do the work:
//   - [Compose] scales 1..MaxDigits glyphs, lays them out side by side and
//     centers the row on a fixed-size canvas. It also builds the sequence
//     label: the digits followed by [Sentinel] (10) in unused slots.
//   - [Generate] draws random glyph sequences from a [Corpus] so that every
//     sequence length from 1 to MaxDigits gets the same number of samples.
//
// The result is a [Dataset] whose pixels and labels are contiguous arrays,
// ready to be shuffled ([Shuffle]), partitioned ([Split]) and written out.
//
// # Quick Start
//
//	corpus, _ := mnistseq.LoadCorpus("train-images-idx3-ubyte.gz", "train-labels-idx1-ubyte.gz")
//	ds, err := mnistseq.Generate(ctx, corpus, mnistseq.GenerateOptions{
//	    Canvas:     mnistseq.DefaultCanvasOptions(),
//	    TargetSize: 50000,
//	    Rand:       rand.New(rand.NewPCG(1, 2)),
//	})
//
// # Geometry
//
// A srcW×srcH glyph scaled by GlyphScale occupies floor(srcW*GlyphScale) by
// floor(srcH*GlyphScale) pixels; 28×28 at 0.45 gives 12×12. Glyphs are
// placed with no spacing. Margins are computed with integer division, so an
// odd amount of free space leaves the extra pixel on the bottom or right.
// On a 64×64 canvas a single 12×12 glyph sits at rows 26..37 and columns
// 26..37; five glyphs span columns 2..61.
//
// # Determinism
//
// All randomness comes from the *rand.Rand passed by the caller. Generating
// twice with the same corpus, options and seed gives identical datasets,
// regardless of the number of workers.
package mnistseq

// Version is the current version of the module.
const Version = "0.1.0"
