// Package main provides the entry point for the guidecrawl CLI.
//
// guidecrawl crawls a restaurant directory, writes the collected records to
// a JSON interchange file and loads them into a SQLite database that can be
// queried from the command line or over HTTP.
//
// Usage:
//
//	guidecrawl run
//	guidecrawl query city Cupertino
//	guidecrawl serve --addr 127.0.0.1:8080
//
// See --help for all available options.
package main

func main() {
	Execute()
}
