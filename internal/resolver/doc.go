// Package resolver performs per-language, best-effort import resolution.
//
// Resolution never fails a file: relative specifiers are resolved against
// the project tree when possible, and everything else degrades to a bare
// package token that the dependency graph records as an external node.
package resolver
