package layout

import "image"

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// CenterSquare returns the largest square that fits into rect, centered on both axes.
func CenterSquare(rect image.Rectangle) image.Rectangle {
	rect = Normalize(rect)
	size := rect.Dx()
	if rect.Dy() < size {
		size = rect.Dy()
	}
	x := rect.Min.X + (rect.Dx()-size)/2
	y := rect.Min.Y + (rect.Dy()-size)/2
	return image.Rect(x, y, x+size, y+size)
}

// FitAspect returns the largest rectangle with the aspect ratio width:height
// that fits into rect, centered on both axes. Non-positive sizes yield an
// empty rectangle at rect's center.
func FitAspect(rect image.Rectangle, width, height int) image.Rectangle {
	rect = Normalize(rect)
	cx := rect.Min.X + rect.Dx()/2
	cy := rect.Min.Y + rect.Dy()/2
	if width <= 0 || height <= 0 {
		return image.Rect(cx, cy, cx, cy)
	}
	w := rect.Dx()
	h := w * height / width
	if h > rect.Dy() {
		h = rect.Dy()
		w = h * width / height
	}
	x := rect.Min.X + (rect.Dx()-w)/2
	y := rect.Min.Y + (rect.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}
