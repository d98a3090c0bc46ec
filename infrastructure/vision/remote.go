package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"invigil.io/infrastructure/logger"
	"invigil.io/infrastructure/network"
	"invigil.io/infrastructure/vision/types"
)

// RemoteDetector calls a YOLO style detection service.
type RemoteDetector struct {
	Network *network.NetworkController
}

func (rd *RemoteDetector) Detect(ctx context.Context, image []byte) ([]types.Detection, error) {
	var result types.DetectionResponse
	if err := postImage(ctx, rd.Network, "/detect", image, &result); err != nil {
		logger.Warning("object detection failed", logger.LoggerOptions{Key: "error", Data: err})
		return nil, err
	}
	return result.Detections, nil
}

// RemoteFaceEncoder calls a service returning one 128-d encoding per face found.
type RemoteFaceEncoder struct {
	Network *network.NetworkController
}

func (re *RemoteFaceEncoder) Encode(ctx context.Context, image []byte) ([]types.Face, error) {
	var result types.EncodingResponse
	if err := postImage(ctx, re.Network, "/encode", image, &result); err != nil {
		logger.Warning("face encoding failed", logger.LoggerOptions{Key: "error", Data: err})
		return nil, err
	}
	return result.Faces, nil
}

type RemoteTextReader struct {
	Network *network.NetworkController
}

func (rt *RemoteTextReader) ReadText(ctx context.Context, image []byte) (string, error) {
	var result types.OCRResponse
	if err := postImage(ctx, rt.Network, "/ocr", image, &result); err != nil {
		logger.Warning("ocr failed", logger.LoggerOptions{Key: "error", Data: err})
		return "", err
	}
	return result.Text, nil
}

func postImage(ctx context.Context, nc *network.NetworkController, path string, image []byte, out any) error {
	response, statusCode, err := nc.Post(ctx, path, nil, types.ImageRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return err
	}
	if statusCode == nil || *statusCode != 200 {
		return fmt.Errorf("%s responded with status %v", path, statusOf(statusCode))
	}
	if err := json.Unmarshal(*response, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func statusOf(code *int) any {
	if code == nil {
		return "none"
	}
	return *code
}
