// Command trips fetches monthly trip extracts for a date window, reconciles
// them into the canonical ingestion.trips layout and appends the result to
// the configured storage backend.
package main

import "os"

func main() {
	os.Exit(execute(os.Args[1:], os.Getenv))
}
