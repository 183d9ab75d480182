// Package resource implements a generic, schema-bound record model for REST
// resources: working vs last-synced attribute state, dirty checking, a
// create/update/delete lifecycle over a pluggable Client, and change
// subscriptions that keep bound UI in step with the model.
package resource
