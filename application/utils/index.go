package utils

import (
	"encoding/base64"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrEmptyPayload     = errors.New("empty payload")
	ErrMissingSeparator = errors.New("data url has no comma separator")
	ErrInvalidEncoding  = errors.New("payload is not valid base64")
)

func GenerateUULDString() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy()).String()
}

func GetStringPointer(text string) *string {
	return &text
}

func GetBooleanPointer(data bool) *bool {
	return &data
}

func GetInt64Pointer(data int64) *int64 {
	return &data
}

func GetTimePointer(data time.Time) *time.Time {
	return &data
}

func HasItemString(arr *[]string, target string) bool {
	for _, v := range *arr {
		if v == target {
			return true
		}
	}
	return false
}

// FormatTimestamp renders t the way log documents display it.
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func RoundTo(value float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(value*shift) / shift
}

// SplitDataURL returns the media type and base64 payload of a data url. requireHeader rejects
// bare base64 payloads.
func SplitDataURL(raw string, requireHeader bool) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", ErrEmptyPayload
	}
	header, payload, found := strings.Cut(raw, ",")
	if !found {
		if requireHeader {
			return "", "", ErrMissingSeparator
		}
		return "", raw, nil
	}
	mediaType := strings.TrimPrefix(header, "data:")
	mediaType, _, _ = strings.Cut(mediaType, ";")
	return mediaType, payload, nil
}

// DecodeBase64 accepts standard and url-safe alphabets, padded or not.
func DecodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(payload); err == nil {
			return data, nil
		}
	}
	return nil, ErrInvalidEncoding
}
