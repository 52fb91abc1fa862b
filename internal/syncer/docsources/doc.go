// Package docsources clones and refreshes the documentation repositories
// declared in the workspace configuration.
package docsources
