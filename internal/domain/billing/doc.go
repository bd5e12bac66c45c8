// Package billing provides the domain model for prepaid unit metering.
//
// A Plan is a purchasable bundle of units. A user's Subscription holds the
// remaining balance of the plan(s) bought and moves between two states:
//
//	active --(balance reaches 0)--> completed
//	completed --(Renew with a top-up)--> active
//
// Every deduction appends one immutable Usage row capturing the balance before
// and after the deduction. Balances never go negative: the persistence layer
// performs the check and the decrement as one conditional update.
//
// Transactions record payments taken for plans through an external gateway.
package billing
