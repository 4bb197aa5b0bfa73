package align

import "math"

// Frame is the target display area a shape is being fitted into.
type Frame struct {
	Width  float64
	Height float64
}

// fitness scores how well a shape with the given rotated bounding box fits
// the frame at the given scale factor. Higher is better. The score rewards
// filling about 80% of the frame with a matching aspect ratio and penalizes
// shapes that would overflow it.
func fitness(width, height float64, frame Frame, scaleFactor float64) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}

	effectiveScale := math.Min(frame.Width/width, frame.Height/height) * scaleFactor
	displayWidth := width * effectiveScale
	displayHeight := height * effectiveScale

	targetAspect := frame.Width / frame.Height
	shapeAspect := width / height
	aspectMatch := 1 - math.Abs(targetAspect-shapeAspect)/math.Max(targetAspect, shapeAspect)

	sizeRatio := math.Max(displayWidth, displayHeight) / math.Min(frame.Width, frame.Height)

	sizePenalty := 1.0
	if sizeRatio > 1.2 {
		over := (sizeRatio - 1.2) / 0.8
		sizePenalty = math.Max(0.1, 1-over*over)
	}

	sizeFitness := 1 - math.Abs(sizeRatio-0.8)/0.8

	visibilityBonus := 1.0
	if sizeRatio <= 0.3 {
		visibilityBonus = sizeRatio / 0.3
	}

	return effectiveScale * (0.7 + 0.3*aspectMatch) * sizePenalty * sizeFitness * visibilityBonus
}
