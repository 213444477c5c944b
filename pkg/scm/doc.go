// Package scm implements the supply chain entity layer: a closed registry of
// the eight domain entities and a generic store that serves list, get,
// create, update, and delete over them.
//
// Every query is assembled from registry metadata, never from request input,
// and every read or mutation applies the caller's row scope. Ownership rules
// are enforced here so they cannot drift between operations: get-one uses
// the same scope as list, and update/delete verify owner references for
// dependent entities uniformly.
package scm
