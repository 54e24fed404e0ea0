package transcript

import "fmt"

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

// Chunk is a bounded slice of the segment sequence. Indices are absolute
// positions into the full segment list, inclusive on both ends.
type Chunk struct {
	StartIndex  int
	EndIndex    int
	ChunkIndex  int
	TotalChunks int
}

// Chunker splits a segment sequence into overlapping chunks so each AI call
// sees enough trailing context from the previous chunk to keep sentence
// boundaries stable.
type Chunker struct {
	chunkSize int
	overlap   int
}

func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must not be negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("overlap %d must be smaller than chunk size %d", overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

func DefaultChunker() *Chunker {
	c, err := NewChunker(DefaultChunkSize, DefaultChunkOverlap)
	if err != nil {
		panic(err) // unreachable with the package defaults
	}
	return c
}

// Split emits chunks covering every index in [0, n-1]. Consecutive chunks
// overlap by exactly the configured overlap, except the final chunk which
// may overlap more when the tail is short.
func (c *Chunker) Split(n int) []Chunk {
	if n <= 0 {
		return nil
	}
	if n <= c.chunkSize {
		return []Chunk{{StartIndex: 0, EndIndex: n - 1, ChunkIndex: 0, TotalChunks: 1}}
	}

	var out []Chunk
	start := 0
	for {
		end := start + c.chunkSize - 1
		if end > n-1 {
			end = n - 1
		}
		out = append(out, Chunk{StartIndex: start, EndIndex: end, ChunkIndex: len(out)})
		if end == n-1 {
			break
		}
		start = end + 1 - c.overlap
	}
	for i := range out {
		out[i].TotalChunks = len(out)
	}
	return out
}

// Covers reports whether the given absolute segment index falls inside the chunk.
func (ch Chunk) Covers(index int) bool {
	return index >= ch.StartIndex && index <= ch.EndIndex
}
