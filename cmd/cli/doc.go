// Package cli assembles the reposync command hierarchy, configuration
// loading, and logging.
package cli
