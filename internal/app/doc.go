// Package app contains the core application logic. It wires the
// configuration loaders, the resolver, and the analysis plan together and
// drives the reporting surface, decoupled from any specific entrypoint like
// a CLI.
package app
