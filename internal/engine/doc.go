// Package engine drives deployments end to end: conflict detection,
// transactional writes across targets, derived deployment status, and
// outcome recording for suggestions.
package engine
