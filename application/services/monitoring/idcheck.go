package monitoring

import (
	"context"
	"regexp"

	"invigil.io/application/utils"
	"invigil.io/entities"
)

// checked in order, the first pattern with a match wins
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{6,12}\b`),
	regexp.MustCompile(`\b[A-Z]{1,2}[-\s]?\d{5,10}\b`),
	regexp.MustCompile(`\b[A-Z]{2,3}\d{5,8}\b`),
	regexp.MustCompile(`\bID[-\s]?\d{5,10}\b`),
}

const idSimilarityThreshold = 70.0

type VerifyIDRequest struct {
	UserID string
	Text   string
	Image  string
}

type VerifyIDResult struct {
	Status   string  `json:"status"`
	Verified bool    `json:"verified"`
	Score    float64 `json:"score"`
	IDNumber *string `json:"id_number"`
	Message  string  `json:"message,omitempty"`
}

func ExtractIDNumber(text string) (string, bool) {
	for _, pattern := range idPatterns {
		if match := pattern.FindString(text); match != "" {
			return match, true
		}
	}
	return "", false
}

// MatchIDNumber compares an extracted id number with a candidate record. An exact match on the
// stored id number scores 100, otherwise the first of id, email and phone whose similarity
// exceeds the threshold decides.
func MatchIDNumber(idNumber string, candidate *entities.Candidate) (bool, float64) {
	if candidate.IDNumber != nil && *candidate.IDNumber == idNumber {
		return true, 100
	}
	for _, field := range []string{candidate.ID, candidate.Email, candidate.Phone} {
		if field == "" {
			continue
		}
		similarity := SimilarityRatio(field, idNumber) * 100
		if similarity > idSimilarityThreshold {
			return true, utils.RoundTo(similarity, 2)
		}
	}
	return false, 0
}

func (e *Engine) VerifyID(ctx context.Context, req VerifyIDRequest) (*VerifyIDResult, error) {
	candidate, err := e.candidates.FetchUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, ErrUserNotFound
	}

	text := req.Text
	if text == "" && req.Image != "" {
		if e.textReader == nil {
			return nil, ErrNoTextReader
		}
		frame, err := DecodeFrame(req.Image)
		if err != nil {
			return nil, err
		}
		text, err = e.textReader.ReadText(ctx, frame.Raw)
		if err != nil {
			e.metrics.collaboratorFailed(ctx, "ocr")
			return nil, err
		}
	}
	if text == "" && req.Image == "" {
		return nil, ErrNothingToVerify
	}

	idNumber, found := ExtractIDNumber(text)
	if !found {
		return &VerifyIDResult{Status: "success", Message: "No ID number found"}, nil
	}
	verified, score := MatchIDNumber(idNumber, candidate)
	return &VerifyIDResult{
		Status:   "success",
		Verified: verified,
		Score:    score,
		IDNumber: &idNumber,
	}, nil
}

// SimilarityRatio is the Ratcliff/Obershelp ratio 2*M/T, M being the characters in matching
// blocks found by repeatedly taking the longest common substring.
func SimilarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingCharacters(ra, rb)) / float64(total)
}

func matchingCharacters(a, b []rune) int {
	i, j, k := longestMatch(a, b)
	if k == 0 {
		return 0
	}
	return k + matchingCharacters(a[:i], b[:j]) + matchingCharacters(a[i+k:], b[j+k:])
}

// longestMatch returns the start in a, start in b and length of the longest common substring,
// preferring the earliest block on ties.
func longestMatch(a, b []rune) (int, int, int) {
	bestI, bestJ, bestK := 0, 0, 0
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > bestK {
					bestI, bestJ, bestK = i-curr[j], j-curr[j], curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return bestI, bestJ, bestK
}
