package enrollment

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"invigil.io/infrastructure/logger"
)

var ErrInvalidModelName = errors.New("invalid UUID format")

// ModelSink stores detection artifacts produced outside the pipeline.
type ModelSink interface {
	SaveModel(ctx context.Context, userID string, data []byte, metadata map[string]string) (string, error)
}

type ImportSummary struct {
	Imported int
	Failed   int
	Skipped  int
}

// ModelFiles lists the user_*.pt files in dir in name order.
func ModelFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "user_") || !strings.HasSuffix(name, ".pt") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// ModelUserID extracts the candidate id from a user_<uuid>.pt filename.
func ModelUserID(filename string) (string, error) {
	userID := strings.TrimSuffix(strings.TrimPrefix(filename, "user_"), ".pt")
	if _, err := uuid.Parse(userID); err != nil {
		return "", ErrInvalidModelName
	}
	return userID, nil
}

// ImportModel stores dir/filename for its candidate together with the optional
// user_<uuid>_metadata.txt found beside it.
func ImportModel(ctx context.Context, sink ModelSink, dir string, filename string) (string, error) {
	userID, err := ModelUserID(filename)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}
	metadata := map[string]string{"originalFilename": filename, "source": "import"}
	raw, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("user_%s_metadata.txt", userID)))
	switch {
	case err == nil:
		metadata["fileMetadata"] = string(raw)
	case !errors.Is(err, fs.ErrNotExist):
		return "", err
	}
	return sink.SaveModel(ctx, userID, data, metadata)
}

// ImportModels imports every model file in dir. progress, when set, is called once per file.
func ImportModels(ctx context.Context, sink ModelSink, dir string, files []string, progress func()) ImportSummary {
	summary := ImportSummary{}
	for _, file := range files {
		_, err := ImportModel(ctx, sink, dir, file)
		switch {
		case errors.Is(err, ErrInvalidModelName):
			logger.Warning("skipping model file", logger.LoggerOptions{Key: "file", Data: file})
			summary.Skipped++
		case err != nil:
			logger.Error("model import failed", logger.LoggerOptions{Key: "file", Data: file}, logger.LoggerOptions{Key: "error", Data: err})
			summary.Failed++
		default:
			summary.Imported++
		}
		if progress != nil {
			progress()
		}
	}
	return summary
}
