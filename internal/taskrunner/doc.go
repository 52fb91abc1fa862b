// Package taskrunner provides bounded-concurrency fan-out for independent work items.
//
// Results preserve input order regardless of completion order, and a failing
// item never interrupts its siblings.
package taskrunner
