// Package state persists the per-repository processing cursor.
//
// A Store maps repository names to the last commit whose documentation
// changes were fully handled. The whole mapping is loaded at Open and
// rewritten on every mutation (write-through); rewrites go to a temporary
// file in the same directory that is renamed over the previous file, so a
// crash never leaves a torn state file behind.
package state
