// Package repository defines the persistence boundary of the booking
// core.  A Store runs a unit of work in one transaction and hands it a
// Tx exposing one repository per entity.  The sentinel errors below let
// services distinguish expected failures from store faults.
package repository

import "github.com/cockroachdb/errors"

// ErrNotFound is returned when an entity is missing or tombstoned.
var ErrNotFound = errors.New("not found")

// ErrDuplicateBinding is returned when inserting a seat binding would
// leave two active bindings for the same seat and showtime.  The store
// enforces this with a unique index, so it also fires when two
// transactions race past the pre-check.
var ErrDuplicateBinding = errors.New("seat already bound for showtime")

// ErrCapacityExhausted is returned when a guarded capacity decrement
// would take the remaining capacity below zero.
var ErrCapacityExhausted = errors.New("remaining capacity exhausted")
