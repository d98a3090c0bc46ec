package vision

import (
	"invigil.io/infrastructure/env"
	"invigil.io/infrastructure/logger"
	"invigil.io/infrastructure/network"
	"invigil.io/infrastructure/vision/types"
)

// localEncoder is set by builds that link an in-process recognizer.
var localEncoder func(modelDir string) (types.FaceEncoder, func(), error)

type Services struct {
	Detector   types.ObjectDetector
	Encoder    types.FaceEncoder
	TextReader types.TextReader
	close      func()
}

func (s *Services) Close() {
	if s.close != nil {
		s.close()
	}
}

func NewServices(cfg env.VisionConfig) *Services {
	services := &Services{
		Detector: &RemoteDetector{Network: network.NewNetworkController(cfg.DetectorURL, cfg.Timeout)},
		Encoder:  &RemoteFaceEncoder{Network: network.NewNetworkController(cfg.FaceEncoderURL, cfg.Timeout)},
	}
	if cfg.OCRURL != "" {
		services.TextReader = &RemoteTextReader{Network: network.NewNetworkController(cfg.OCRURL, cfg.Timeout)}
	}
	if cfg.DlibModelDir != "" {
		if localEncoder == nil {
			logger.Warning("DLIB_MODEL_DIR is set but this build has no in-process face encoder, using the remote encoder")
			return services
		}
		encoder, closer, err := localEncoder(cfg.DlibModelDir)
		if err != nil {
			logger.Error("failed to load dlib models, using the remote encoder", logger.LoggerOptions{Key: "error", Data: err})
			return services
		}
		services.Encoder = encoder
		services.close = closer
		logger.Info("using in-process dlib face encoder")
	}
	return services
}
