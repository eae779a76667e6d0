package capture

// SheetAspectRatio is width over height of a standard LiveTest answer sheet
// (4.25in x 11in).
const SheetAspectRatio = 4.25 / 11

// Box is an axis-aligned rectangle in frame coordinates.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Guide returns the alignment rectangle to overlay on a preview frame of the
// given size: sheet-shaped, sized to 90% of the constraining dimension and
// centered. The overlay is advisory only; nothing here detects or corrects
// the document.
func Guide(frameWidth, frameHeight float64) Box {
	if frameWidth <= 0 || frameHeight <= 0 {
		return Box{}
	}

	height := frameHeight * 0.9
	width := height * SheetAspectRatio

	if width > frameWidth {
		width = frameWidth * 0.9
		height = width / SheetAspectRatio
	}

	return Box{
		X:      (frameWidth - width) / 2,
		Y:      (frameHeight - height) / 2,
		Width:  width,
		Height: height,
	}
}
