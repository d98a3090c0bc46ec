package types

import "context"

// Box is a pixel bounding box, top-left inclusive and bottom-right exclusive.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

type Face struct {
	Box      Box       `json:"box"`
	Encoding []float64 `json:"encoding"`
}

type ObjectDetector interface {
	Detect(ctx context.Context, image []byte) ([]Detection, error)
}

type FaceEncoder interface {
	Encode(ctx context.Context, image []byte) ([]Face, error)
}

type TextReader interface {
	ReadText(ctx context.Context, image []byte) (string, error)
}

type ImageRequest struct {
	Image string `json:"image"`
}

type DetectionResponse struct {
	Detections []Detection `json:"detections"`
}

type EncodingResponse struct {
	Faces []Face `json:"faces"`
}

type OCRResponse struct {
	Text string `json:"text"`
}
