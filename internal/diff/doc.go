// Package diff parses unified diff text and maps target-file line
// numbers to positions within each file's own diff block.
//
// The line map is used to decide whether a diagnostic's anchor line is
// visible in the pull request diff at all. Review comments themselves
// are addressed by raw new-side line numbers (the API's "line" mode),
// so the map is a visibility filter, not a payload coordinate.
package diff
