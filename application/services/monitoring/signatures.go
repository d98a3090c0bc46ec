package monitoring

import (
	"math"
	"sync"

	"github.com/coder/hnsw"
)

// galleries up to this size are scanned exhaustively
const exactScanLimit = 256

// candidates pulled from the graph before the exact distance re-check
const graphCandidates = 16

type Signature struct {
	UserID   string
	Name     string
	Email    string
	Encoding []float64
}

// SignatureIndex maps enrolled users to their mean face encoding. Lookups return the closest
// signature within tolerance, ties going to the earliest inserted user.
type SignatureIndex struct {
	mu         sync.RWMutex
	order      []string
	signatures map[string]Signature
	graph      *hnsw.Graph[string]
	dim        int
}

func NewSignatureIndex() *SignatureIndex {
	return &SignatureIndex{signatures: map[string]Signature{}}
}

// Replace swaps the whole gallery.
func (s *SignatureIndex) Replace(signatures []Signature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.signatures = map[string]Signature{}
	s.dim = 0
	for _, sig := range signatures {
		if err := s.put(sig); err != nil {
			return err
		}
	}
	s.rebuild()
	return nil
}

func (s *SignatureIndex) Put(sig Signature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.put(sig); err != nil {
		return err
	}
	s.rebuild()
	return nil
}

func (s *SignatureIndex) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.signatures[userID]; !ok {
		return
	}
	delete(s.signatures, userID)
	for i, id := range s.order {
		if id == userID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if len(s.order) == 0 {
		s.dim = 0
	}
	s.rebuild()
}

func (s *SignatureIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *SignatureIndex) Get(userID string) (Signature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sig, ok := s.signatures[userID]
	return sig, ok
}

// Nearest returns the enrolled signature closest to encoding whose distance is within tolerance.
func (s *SignatureIndex) Nearest(encoding []float64, tolerance float64) (Signature, float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 || len(encoding) != s.dim {
		return Signature{}, 0, false
	}

	candidates := s.order
	if s.graph != nil {
		neighbours := s.graph.Search(toVector(encoding), graphCandidates)
		candidates = make([]string, 0, len(neighbours))
		for _, n := range neighbours {
			candidates = append(candidates, n.Key)
		}
	}

	var best Signature
	bestDistance := math.Inf(1)
	for _, id := range candidates {
		sig := s.signatures[id]
		distance := EuclideanDistance(sig.Encoding, encoding)
		if distance > tolerance {
			continue
		}
		if distance < bestDistance || (distance == bestDistance && s.rank(id) < s.rank(best.UserID)) {
			best, bestDistance = sig, distance
		}
	}
	if math.IsInf(bestDistance, 1) {
		return Signature{}, 0, false
	}
	return best, bestDistance, true
}

func (s *SignatureIndex) put(sig Signature) error {
	if len(sig.Encoding) == 0 {
		return ErrSignatureDimensions
	}
	if s.dim != 0 && len(sig.Encoding) != s.dim {
		return ErrSignatureDimensions
	}
	s.dim = len(sig.Encoding)
	if _, exists := s.signatures[sig.UserID]; !exists {
		s.order = append(s.order, sig.UserID)
	}
	s.signatures[sig.UserID] = sig
	return nil
}

func (s *SignatureIndex) rank(userID string) int {
	for i, id := range s.order {
		if id == userID {
			return i
		}
	}
	return len(s.order)
}

// rebuild regenerates the graph, which is only consulted for large galleries.
func (s *SignatureIndex) rebuild() {
	if len(s.order) <= exactScanLimit {
		s.graph = nil
		return
	}
	g := hnsw.NewGraph[string]()
	g.M = graphCandidates
	g.Ml = 1.0 / float64(graphCandidates)
	g.Distance = hnsw.EuclideanDistance
	for _, id := range s.order {
		g.Add(hnsw.MakeNode(id, toVector(s.signatures[id].Encoding)))
	}
	s.graph = g
}

func toVector(encoding []float64) []float32 {
	v := make([]float32, len(encoding))
	for i, x := range encoding {
		v[i] = float32(x)
	}
	return v
}

func EuclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// MeanEncoding averages encodings per dimension. Encodings whose length differs from the first are skipped.
func MeanEncoding(encodings [][]float64) []float64 {
	if len(encodings) == 0 {
		return nil
	}
	dim := len(encodings[0])
	mean := make([]float64, dim)
	used := 0
	for _, enc := range encodings {
		if len(enc) != dim {
			continue
		}
		for i, v := range enc {
			mean[i] += v
		}
		used++
	}
	for i := range mean {
		mean[i] /= float64(used)
	}
	return mean
}
