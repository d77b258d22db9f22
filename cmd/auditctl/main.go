// Package main provides the auditctl CLI for running invoice audits
// and managing extraction datasets from the command line.
package main

// main is the entry point for auditctl.
func main() {
	Execute()
}
