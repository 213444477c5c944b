// Package authz implements the authorization layer: the permission matrix
// store, the authorization gate evaluated before any storage access, and the
// row-scoping policy restricting which rows a role can see or mutate.
//
// The gate answers the coarse question (may this role perform this action on
// this entity at all?) from the role_permissions table. The row-scoping
// policy answers the fine question (which rows?) as a pure function of
// (role, table). One policy object serves list, get, update and delete so the
// read and write paths can never disagree about visibility.
package authz
