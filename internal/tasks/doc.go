// Package tasks implements long-running client operations over the
// myFlix API, currently the favorites/catalog export.
//
// Operations emit progress updates via channels for non-blocking status
// reporting to the CLI/UI layers.
package tasks
