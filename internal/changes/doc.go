// Package changes resolves which documentation files of a repository changed
// between a stored cursor commit and the current head.
//
// The resolver never touches persisted state. It works on a Tree, the narrow
// view of a working tree that the git package provides, so tests can use an
// in-memory fake.
package changes
