// Package services is the client sync engine: it decides for every user
// intent whether data goes to the remote API, the durable store or the guest
// store, based on the session and the connectivity signal.
//
// Operations never return Go errors to the UI layer. Each resolves to a
// tagged result (Error/Message or Success) after falling back to local data
// where a fallback exists. Storage failures degrade to empty results; store
// calls on the favorites path are bounded by timeouts.
//
// Engine wires the services to connectivity transitions: going online
// replays queued favorite actions and then submits offline drafts.
package services
