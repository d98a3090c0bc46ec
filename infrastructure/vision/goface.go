//go:build goface

package vision

import (
	"context"
	"sync"

	"github.com/Kagami/go-face"
	"invigil.io/infrastructure/vision/types"
)

func init() {
	localEncoder = func(modelDir string) (types.FaceEncoder, func(), error) {
		rec, err := face.NewRecognizer(modelDir)
		if err != nil {
			return nil, nil, err
		}
		return &DlibEncoder{rec: rec}, rec.Close, nil
	}
}

// DlibEncoder runs dlib in process. The recognizer is not safe for concurrent use.
type DlibEncoder struct {
	mu  sync.Mutex
	rec *face.Recognizer
}

func (d *DlibEncoder) Encode(ctx context.Context, image []byte) ([]types.Face, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	faces, err := d.rec.Recognize(image)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	result := make([]types.Face, 0, len(faces))
	for _, f := range faces {
		encoding := make([]float64, len(f.Descriptor))
		for i, v := range f.Descriptor {
			encoding[i] = float64(v)
		}
		result = append(result, types.Face{
			Box: types.Box{
				X1: f.Rectangle.Min.X,
				Y1: f.Rectangle.Min.Y,
				X2: f.Rectangle.Max.X,
				Y2: f.Rectangle.Max.Y,
			},
			Encoding: encoding,
		})
	}
	return result, nil
}
