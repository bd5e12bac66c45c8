// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so that the domain stays free of ORM
// tags; each model converts with ToDomain and a XModelFromDomain constructor.
//
//   - base.go: shared id/timestamp/version columns
//   - billing.go: plans, subscriptions, usage, transactions
//   - identity.go: users
package models
