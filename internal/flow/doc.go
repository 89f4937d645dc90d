// Package flow is the workflow engine that drives a request through a
// directed graph of steps. Routing is decided at runtime by the action
// each step reports; the run terminates when an action has no outgoing
// edge. Steps of one run execute strictly sequentially.
package flow
