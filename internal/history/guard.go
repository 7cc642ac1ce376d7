package history

// Each successful run is allowed to trigger another run of itself; the
// chain depth recorded in history is the only thing bounding that loop.
// The guard must be consulted once, before any other component executes.

// LastChainDepth returns the chain depth of the newest record, or 0 when
// the history is empty.
func (s *Store) LastChainDepth() int {
	last, ok := s.Last()
	if !ok {
		return 0
	}
	return last.ChainDepth
}

// AtDepthCeiling reports whether the recorded chain depth has reached the
// configured ceiling, in which case the entire run must be skipped with no
// side effects.
func (s *Store) AtDepthCeiling(maxDepth int) bool {
	return s.LastChainDepth() >= maxDepth
}
