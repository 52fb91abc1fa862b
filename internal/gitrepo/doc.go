// Package gitrepo contains helpers for resolving textual repository references.
//
// It normalizes SSH, HTTPS, and bare org/repo forms into a structured
// representation used for clone URL construction and local directory naming.
package gitrepo
