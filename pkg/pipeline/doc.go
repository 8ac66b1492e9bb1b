// Package pipeline drives one use of a template from target resolution to
// materialization.
//
// A run moves through fixed phases and never re-enters an earlier one:
//
//  1. resolve the workspace and target roots
//  2. discover templates under the local and global roots
//  3. select a template, offering to rerun the last one with its answers
//  4. obtain the answer-set from pig.executeAsync, or from the session
//  5. remember the raw answers, then apply pig.transformContext
//  6. walk the template and resolve each entry's destination
//  7. render every kept file in its own sandbox
//  8. materialize the kept entries
//
// Any failure in author code during phases 4 to 7 is reported to the host
// and ends the run before anything is written.
package pipeline
