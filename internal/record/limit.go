package record

// Limiter caps how many records a pass produces. A negative maximum means
// unbounded.
type Limiter struct {
	max   int
	taken int
}

// NewLimiter creates a limiter with the given maximum.
func NewLimiter(max int) *Limiter {
	return &Limiter{max: max}
}

// Unbounded reports whether the limiter never stops a pass.
func (l *Limiter) Unbounded() bool {
	return l == nil || l.max < 0
}

// Max returns the configured maximum.
func (l *Limiter) Max() int {
	if l == nil {
		return -1
	}
	return l.max
}

// Taken returns how many records have been counted with Take.
func (l *Limiter) Taken() int {
	if l == nil {
		return 0
	}
	return l.taken
}

// Take counts one accepted record.
func (l *Limiter) Take() {
	if l != nil {
		l.taken++
	}
}

// Exhausted reports whether the records counted with Take reached the cap.
func (l *Limiter) Exhausted() bool {
	return l.Reached(l.Taken())
}

// Reached reports whether an externally maintained count reached the cap.
func (l *Limiter) Reached(count int) bool {
	if l.Unbounded() {
		return false
	}
	return count >= l.max
}
