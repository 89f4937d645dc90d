// Package ports defines the interfaces between the orchestration core and
// its external collaborators: the model client and the job store. Adapters
// under pkg/adapters implement them; the core only consumes them.
package ports
