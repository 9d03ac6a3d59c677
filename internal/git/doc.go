// Package git synchronizes tracked repositories into the local workspace and
// exposes each checkout as a changes.Tree.
//
// Synchronization is fast-forward only: a remote branch that no longer
// contains the local head is reported as a *RemoteDivergedError and left for
// an operator to resolve.
package git
