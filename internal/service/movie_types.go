package service

// Movie is a catalogue entry
type Movie struct {
	// ID is assigned by the store on creation and never changes
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Genres string  `json:"genres"`
	Year   int32   `json:"year"`
	// Version is the row version, incremented by every successful replace.
	// Zero means the caller does not hold a version.
	Version int32 `json:"version,omitempty"`
}

// Clone returns a copy of m. A nil movie clones to nil.
func (m *Movie) Clone() *Movie {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
