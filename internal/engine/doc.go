// Package engine owns the live grid and orchestrates generation passes:
// full steps over every cell and targeted single-cell updates, each
// throttled through the admission gate and isolated from its siblings'
// failures.
package engine
