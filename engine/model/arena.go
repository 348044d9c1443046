package model

// Range is a half-open byte range [Start, End) into an Arena.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Arena is a growable byte buffer that attribute data is appended into.
// Ranges returned by Append stay valid for the lifetime of the arena because
// the arena never shrinks or rewrites bytes it has already handed out.
type Arena struct {
	data []byte
}

// NewArena creates an empty arena with the given initial capacity.
//
// Parameters:
//   - capacity: the number of bytes to pre-allocate
//
// Returns:
//   - *Arena: the new arena
func NewArena(capacity int) *Arena {
	return &Arena{data: make([]byte, 0, capacity)}
}

// Append copies b onto the end of the arena and returns the range it now occupies.
//
// Parameters:
//   - b: the bytes to append
//
// Returns:
//   - Range: the half-open range of the appended bytes
func (a *Arena) Append(b []byte) Range {
	start := len(a.data)
	a.data = append(a.data, b...)
	return Range{Start: start, End: len(a.data)}
}

// Grow reserves n zeroed bytes at the end of the arena and returns their range
// together with a writable view of them. The view must not be retained after
// the next call to Append or Grow.
func (a *Arena) Grow(n int) (Range, []byte) {
	start := len(a.data)
	a.data = append(a.data, make([]byte, n)...)
	return Range{Start: start, End: len(a.data)}, a.data[start:]
}

// Slice returns the bytes covered by r.
func (a *Arena) Slice(r Range) []byte {
	return a.data[r.Start:r.End]
}

// Bytes returns the full arena contents.
func (a *Arena) Bytes() []byte {
	return a.data
}

// Len returns the current arena size in bytes.
func (a *Arena) Len() int {
	return len(a.data)
}
