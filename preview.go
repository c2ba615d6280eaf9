package mnistseq

import (
	"fmt"

	"github.com/gogpu/mnistseq/internal/raster"
)

// ContactSheetOptions lays out a preview grid.
type ContactSheetOptions struct {
	Rows, Cols int

	// Gap is the border in pixels around and between tiles.
	Gap int

	// Background fills the gaps.
	Background uint8
}

// ContactSheet tiles the first Rows*Cols samples of d (fewer if d is
// smaller) into one raster, row by row.
func ContactSheet(d *Dataset, opts ContactSheetOptions) (*Raster, error) {
	if opts.Rows <= 0 || opts.Cols <= 0 || opts.Gap < 0 {
		return nil, fmt.Errorf("mnistseq: invalid contact sheet %dx%d gap %d", opts.Cols, opts.Rows, opts.Gap)
	}
	w := opts.Cols*(d.Width+opts.Gap) + opts.Gap
	h := opts.Rows*(d.Height+opts.Gap) + opts.Gap
	sheet, err := raster.New(w, h)
	if err != nil {
		return nil, err
	}
	sheet.Fill(opts.Background)

	n := min(d.N, opts.Rows*opts.Cols)
	for i := range n {
		row, col := i/opts.Cols, i%opts.Cols
		x := opts.Gap + col*(d.Width+opts.Gap)
		y := opts.Gap + row*(d.Height+opts.Gap)
		raster.Blit(sheet, x, y, d.Image(i))
	}
	return sheet, nil
}
