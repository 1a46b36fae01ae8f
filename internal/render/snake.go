package render

import "github.com/dokzlo13/ledclock/internal/geometry"

// DefaultSnakeLength is the longest a border snake gets, in pixels.
const DefaultSnakeLength = 16

// startPointVisibleUntil is the progress after which the bottom-center
// start pixel is no longer drawn.
const startPointVisibleUntil = 0.3

// Snake animates two segments along the panel border while the color
// changes. Both start at bottom-center; one runs counter-clockwise, the
// other clockwise, and they meet at top-center.
type Snake struct {
	width, height int
	maxLength     int
	left, right   []geometry.PixelPoint
}

// NewSnake precomputes the border paths for a width x height panel.
func NewSnake(width, height, maxLength int) *Snake {
	if maxLength <= 0 {
		maxLength = DefaultSnakeLength
	}
	s := &Snake{width: width, height: height, maxLength: maxLength}
	s.buildPaths()
	return s
}

func (s *Snake) buildPaths() {
	startX := s.width / 2
	startY := s.height - 1

	// bottom-center -> left edge -> top-left -> top-center
	for x := startX - 1; x >= 0; x-- {
		s.left = append(s.left, geometry.PixelPoint{X: x, Y: startY})
	}
	for y := startY - 1; y >= 0; y-- {
		s.left = append(s.left, geometry.PixelPoint{X: 0, Y: y})
	}
	for x := 1; x <= s.width/2; x++ {
		s.left = append(s.left, geometry.PixelPoint{X: x, Y: 0})
	}

	// bottom-center -> right edge -> top-right -> top-center
	for x := startX + 1; x < s.width; x++ {
		s.right = append(s.right, geometry.PixelPoint{X: x, Y: startY})
	}
	for y := startY - 1; y >= 0; y-- {
		s.right = append(s.right, geometry.PixelPoint{X: s.width - 1, Y: y})
	}
	for x := s.width - 2; x >= s.width/2; x-- {
		s.right = append(s.right, geometry.PixelPoint{X: x, Y: 0})
	}
}

// Paths returns the counter-clockwise and clockwise paths.
func (s *Snake) Paths() (left, right []geometry.PixelPoint) {
	return s.left, s.right
}

// Update returns the pixels to light at progress in [0,1). The head
// travels the full path plus the body length, so the tail leaves the
// panel exactly when progress reaches 1.
func (s *Snake) Update(progress float64) []geometry.PixelPoint {
	if progress < 0 || progress >= 1 {
		return nil
	}

	var out []geometry.PixelPoint
	out = s.appendBody(out, s.left, progress)
	out = s.appendBody(out, s.right, progress)

	if progress < startPointVisibleUntil {
		out = append(out, geometry.PixelPoint{X: s.width / 2, Y: s.height - 1})
	}
	return out
}

func (s *Snake) appendBody(out []geometry.PixelPoint, path []geometry.PixelPoint, progress float64) []geometry.PixelPoint {
	head := int(progress * float64(len(path)+s.maxLength))
	for i := 0; i < s.maxLength; i++ {
		idx := head - i
		if idx >= 0 && idx < len(path) {
			out = append(out, path[idx])
		}
	}
	return out
}

// Draw lights the snake pixels for progress on s with the current color.
func (s *Snake) Draw(surface Surface, progress float64) {
	for _, p := range s.Update(progress) {
		drawPixel(surface, p.X, p.Y)
	}
}
