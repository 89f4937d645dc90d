// Package middleware provides composable JobStore wrappers for
// at-rest concerns: encryption of job records and PII masking.
package middleware

import "github.com/latticelabs/lattice/pkg/ports"

// Middleware allows wrapping a JobStore to add behavior.
type Middleware func(ports.JobStore) ports.JobStore

// Chain applies middlewares to store, first middleware outermost.
func Chain(store ports.JobStore, mws ...Middleware) ports.JobStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
