// Package agent wires the concrete assistant steps into a runnable flow:
// intent classification fans out to scene/node modification, generation
// or chat, and scene modifications are committed through the diff engine.
package agent
