// Package cli provides the interactive storykeeper command-line client.
//
// It wires configuration, local storage, the API client and the sync engine
// behind a REPL. A background watcher probes the API and flips the
// connectivity signal; going online replays queued favorite changes and
// publishes offline drafts.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command list.
package cli
