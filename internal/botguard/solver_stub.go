//go:build !botguard

package botguard

// NewSolver always fails in builds without the botguard tag.
func NewSolver(scriptPath string) (Solver, error) {
	return nil, ErrUnavailable
}
