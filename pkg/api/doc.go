// Package api assembles the HTTP surface: authentication endpoints, the
// generic entity routes, the admin surface, and reports. Route guards are
// layered in a fixed order: credential verification, then the permission
// gate, then row scoping inside the store.
package api
