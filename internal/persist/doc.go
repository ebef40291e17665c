// Package persist saves and restores the target UMF across runs.
//
// An Adapter pairs a Codec with a Channel:
//   - fragment: the UMF is JSON-encoded, percent-encoded and stored after the
//     '#' of a shareable location (a small file users can bookmark, copy or
//     edit by hand). Edits made outside the process are observed and reloaded.
//   - local: plain JSON under a fixed key in the SQLite key/value table.
//   - none: nothing is persisted.
//
// Writing an unchanged token is a no-op. On observable channels the adapter
// captures the focused input before a write and hands its restoration to a
// deferral hook so it runs on a later turn of the caller's event loop.
package persist
