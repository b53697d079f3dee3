package core

// PoolStats represents runtime observability state for a worker pool.
type PoolStats struct {
	Name    string
	Workers int
	Queued  int
	Active  int
	Closed  bool
}
