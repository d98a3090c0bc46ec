package enrollment

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strconv"
)

const (
	maxROIWidth  = 400
	maxROIHeight = 300
	roiScale     = 0.625
)

// ROI is the centred region a candidate is asked to keep their face in.
type ROI struct {
	X      int
	Y      int
	Width  int
	Height int
}

func CentredROI(frameWidth int, frameHeight int) ROI {
	width := min(maxROIWidth, int(float64(frameWidth)*roiScale))
	height := min(maxROIHeight, int(float64(frameHeight)*roiScale))
	return ROI{
		X:      (frameWidth - width) / 2,
		Y:      (frameHeight - height) / 2,
		Width:  width,
		Height: height,
	}
}

// YOLOLabel renders roi as a class 0 label line with coordinates normalised to the frame.
func YOLOLabel(roi ROI, frameWidth int, frameHeight int) string {
	w, h := float64(frameWidth), float64(frameHeight)
	xc := clamp01((float64(roi.X) + float64(roi.Width)/2) / w)
	yc := clamp01((float64(roi.Y) + float64(roi.Height)/2) / h)
	rw := clamp01(float64(roi.Width) / w)
	rh := clamp01(float64(roi.Height) / h)
	return fmt.Sprintf("0 %s %s %s %s", formatFloat(xc), formatFloat(yc), formatFloat(rw), formatFloat(rh))
}

// AnnotateFrame reads the frame dimensions and returns its label line.
func AnnotateFrame(frame []byte) (string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		return "", err
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return "", fmt.Errorf("frame has no area")
	}
	return YOLOLabel(CentredROI(cfg.Width, cfg.Height), cfg.Width, cfg.Height), nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
