package enrollment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const ModelTypeSimplified = "simplified"

type datasetConfig struct {
	Path  string         `yaml:"path"`
	Train string         `yaml:"train"`
	Val   string         `yaml:"val"`
	Names map[int]string `yaml:"names"`
}

// Artifact is the simplified detection artifact stored for an enrolled candidate.
type Artifact struct {
	Model       []byte
	Metadata    string
	DatasetYAML []byte
	TrainFrames int
	ValFrames   int
}

// SplitFrames divides count frames 80/20 into training and validation sets.
func SplitFrames(count int) (int, int) {
	train := int(0.8 * float64(count))
	return train, count - train
}

func BuildArtifact(userID string, frameCount int, createdAt time.Time) (*Artifact, error) {
	train, val := SplitFrames(frameCount)
	dataset, err := yaml.Marshal(datasetConfig{
		Path:  fmt.Sprintf("dataset_%s", userID),
		Train: "train/images",
		Val:   "val/images",
		Names: map[int]string{0: fmt.Sprintf("user_%s", userID)},
	})
	if err != nil {
		return nil, err
	}

	var meta strings.Builder
	fmt.Fprintf(&meta, "User ID: %s\n", userID)
	fmt.Fprintf(&meta, "Registration time: %s\n", createdAt.Format(time.ANSIC))
	fmt.Fprintf(&meta, "Frames: %d\n", frameCount)
	meta.WriteString("Note: Using simplified face recognition approach\n")

	return &Artifact{
		Model:       []byte(fmt.Sprintf("USER_MODEL:%s", userID)),
		Metadata:    meta.String(),
		DatasetYAML: dataset,
		TrainFrames: train,
		ValFrames:   val,
	}, nil
}

// StorageMetadata is what gets attached to the stored artifact file.
func (a *Artifact) StorageMetadata(frameCount int, createdAt time.Time) map[string]string {
	return map[string]string{
		"modelType":    ModelTypeSimplified,
		"framesCount":  strconv.Itoa(frameCount),
		"trainFrames":  strconv.Itoa(a.TrainFrames),
		"valFrames":    strconv.Itoa(a.ValFrames),
		"creationTime": createdAt.UTC().Format(time.RFC3339),
		"fileMetadata": a.Metadata,
		"datasetYAML":  string(a.DatasetYAML),
	}
}
