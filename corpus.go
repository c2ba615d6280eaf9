package mnistseq

import (
	"fmt"

	"github.com/gogpu/mnistseq/internal/idx"
	"github.com/gogpu/mnistseq/internal/raster"
)

// LoadCorpus reads an MNIST-style pair of IDX files (images and labels,
// optionally gzip-compressed) into a Corpus. Glyph rasters share one
// backing array.
func LoadCorpus(imagesPath, labelsPath string) (Corpus, error) {
	images, labels, err := idx.Load(imagesPath, labelsPath)
	if err != nil {
		return Corpus{}, err
	}
	c, err := corpusFromIDX(images, labels)
	if err != nil {
		return Corpus{}, err
	}
	Logger().Info("corpus loaded",
		"glyphs", c.Len(), "size", fmt.Sprintf("%dx%d", images.Cols, images.Rows))
	return c, nil
}

func corpusFromIDX(images *idx.Images, labels []uint8) (Corpus, error) {
	c := Corpus{
		Images: make([]*Raster, images.Count),
		Labels: labels,
	}
	for i := range c.Images {
		r, err := raster.FromRaw(images.At(i), images.Cols, images.Rows, images.Cols)
		if err != nil {
			return Corpus{}, fmt.Errorf("mnistseq: glyph %d: %w", i, err)
		}
		c.Images[i] = r
	}
	if err := c.Validate(); err != nil {
		return Corpus{}, err
	}
	return c, nil
}
