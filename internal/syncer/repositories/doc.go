// Package repositories clones, updates, and backs up the project
// repositories declared in the workspace configuration.
package repositories
