// Package cli provides the interactive userdesk command-line client.
//
// It wires configuration, local storage, the user service client and the
// session, list and edit engines into a line-oriented REPL. Typical flow:
// restore the stored session, log in when there is none, then browse, filter,
// edit and delete users.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
