// Package workspace defines the declarative multi-repository workspace model.
//
// A Configuration names the project, the default repository owner and host,
// the managed repositories, and the tracked documentation sources. It is
// loaded once at process start, validated, and never mutated afterwards.
package workspace
