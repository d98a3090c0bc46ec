package monitoring

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
	"invigil.io/application/utils"
	vtypes "invigil.io/infrastructure/vision/types"
)

var annotationColour = color.RGBA{R: 255, A: 255}

// Frame is a decoded webcam frame. Raw keeps the original bytes for the vision collaborators.
type Frame struct {
	Raw    []byte
	Image  image.Image
	Format string
}

// DecodeFrame accepts a data url or bare base64 holding a jpeg, png, gif or webp image.
func DecodeFrame(payload string) (*Frame, error) {
	_, data, err := utils.SplitDataURL(payload, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	raw, err := utils.DecodeBase64(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return &Frame{Raw: raw, Image: img, Format: format}, nil
}

type annotation struct {
	Box   vtypes.Box
	Label string
}

// AnnotateSnapshot draws boxes, their labels and a timestamp onto a copy of img and returns it as jpeg.
func AnnotateSnapshot(img image.Image, annotations []annotation, timestamp string) ([]byte, error) {
	bounds := img.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, img, bounds.Min, draw.Src)

	for _, a := range annotations {
		drawRect(canvas, a.Box, 2)
		labelY := a.Box.Y1 - 4
		if labelY < bounds.Min.Y+13 {
			labelY = a.Box.Y1 + 14
		}
		drawText(canvas, a.Label, a.Box.X1, labelY)
	}
	drawText(canvas, timestamp, bounds.Min.X+10, bounds.Min.Y+20)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawRect(canvas *image.RGBA, box vtypes.Box, thickness int) {
	r := image.Rect(box.X1, box.Y1, box.X2, box.Y2).Intersect(canvas.Bounds())
	if r.Empty() {
		return
	}
	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			canvas.SetRGBA(x, r.Min.Y+t, annotationColour)
			canvas.SetRGBA(x, r.Max.Y-1-t, annotationColour)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			canvas.SetRGBA(r.Min.X+t, y, annotationColour)
			canvas.SetRGBA(r.Max.X-1-t, y, annotationColour)
		}
	}
}

func drawText(canvas *image.RGBA, text string, x int, y int) {
	d := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(annotationColour),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
