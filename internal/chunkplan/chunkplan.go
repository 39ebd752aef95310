// Package chunkplan decides how large each slice of an oversized document may
// be when it is sent out for regeneration. The translation pipeline owns the
// actual splitting and reassembly; this package only supplies the sizing
// policy, including the shrink schedule applied after repeated failures.
package chunkplan

// Planner holds the size thresholds for one regeneration target. All sizes
// are in serialized bytes.
type Planner struct {
	MaxChunkSize int
	MinChunkSize int
	// SizeReductionFactor scales the chunk size down after a failed call.
	// Must be below 1; values outside (0,1) fall back to the default.
	SizeReductionFactor float64
}

const (
	defaultMaxChunkSize = 24 * 1024
	defaultMinChunkSize = 2 * 1024
	defaultReduction    = 0.5
)

func (p Planner) maxSize() int {
	if p.MaxChunkSize <= 0 {
		return defaultMaxChunkSize
	}
	return p.MaxChunkSize
}

func (p Planner) minSize() int {
	min := p.MinChunkSize
	if min <= 0 {
		min = defaultMinChunkSize
	}
	if max := p.maxSize(); min > max {
		min = max
	}
	return min
}

func (p Planner) reduction() float64 {
	if p.SizeReductionFactor <= 0 || p.SizeReductionFactor >= 1 {
		return defaultReduction
	}
	return p.SizeReductionFactor
}

// Plan returns the initial chunk size for a document of the given serialized
// size: the whole document when it fits, otherwise the configured maximum.
func (p Planner) Plan(serializedSize int) int {
	if serializedSize <= 0 {
		return p.minSize()
	}
	if serializedSize < p.minSize() {
		return p.minSize()
	}
	if serializedSize > p.maxSize() {
		return p.maxSize()
	}
	return serializedSize
}

// Shrink returns the next smaller chunk size after a failure, never going
// below the floor.
func (p Planner) Shrink(current int) int {
	if current <= 0 {
		current = p.maxSize()
	}
	next := int(float64(current) * p.reduction())
	if next < p.minSize() {
		return p.minSize()
	}
	return next
}

// Chunks returns how many pieces a document of serializedSize splits into at
// the given chunk size.
func (p Planner) Chunks(serializedSize, chunkSize int) int {
	if serializedSize <= 0 {
		return 0
	}
	if chunkSize <= 0 {
		chunkSize = p.minSize()
	}
	return (serializedSize + chunkSize - 1) / chunkSize
}
