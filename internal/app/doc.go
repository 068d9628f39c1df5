// Package app contains the depmake application logic. It resolves the
// configuration from flags, the settings file and the environment, wires the
// assembly hook into a dependency graph and drives one Make call, decoupled
// from any specific entrypoint like a CLI.
package app
