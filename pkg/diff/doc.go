// Package diff implements the search/replace patch engine used to commit
// model-generated scene modifications.
//
// The wire format is a sequence of hunks:
//
//	<<<<<<< SEARCH
//	<original lines>
//	=======
//	<replacement lines>
//	>>>>>>> REPLACE
//
// Hunks apply sequentially against the evolving document, so a later hunk
// may match text introduced by an earlier one. Application is atomic: the
// caller observes either the fully patched text or an error, never a
// partial patch.
package diff
