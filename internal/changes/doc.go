// Package changes commits and pushes local modifications across the
// repositories declared in the workspace configuration.
package changes
