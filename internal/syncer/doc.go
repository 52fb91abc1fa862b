// Package syncer wires the documentation and repository synchronization
// services behind the sync command.
package syncer
