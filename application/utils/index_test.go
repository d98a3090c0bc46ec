package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDataURL(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		requireHeader bool
		mediaType     string
		payload       string
		err           error
	}{
		{"data url", "data:image/jpeg;base64,QUJD", false, "image/jpeg", "QUJD", nil},
		{"video data url", "data:video/webm;codecs=vp9;base64,QUJD", true, "video/webm", "QUJD", nil},
		{"bare base64", "QUJD", false, "", "QUJD", nil},
		{"bare base64 rejected", "QUJD", true, "", "", ErrMissingSeparator},
		{"empty", "  ", false, "", "", ErrEmptyPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mediaType, payload, err := SplitDataURL(tt.raw, tt.requireHeader)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mediaType, mediaType)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestDecodeBase64(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding} {
		data, err := DecodeBase64(enc.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, data)
	}
	_, err := DecodeBase64("not base64!!")
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 71.43, RoundTo(71.428571, 2))
	assert.Equal(t, 55.0, RoundTo(55.0, 2))
}

func TestGenerateUULDStringIsUnique(t *testing.T) {
	a, b := GenerateUULDString(), GenerateUULDString()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
