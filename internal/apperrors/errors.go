package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidAmount indicates a non-positive amount, or one that is not an
// exact multiple of the smallest denomination the till can dispense.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInsufficientInventory indicates that exact change cannot be made from
// the denominations currently on hand in the drawer.
var ErrInsufficientInventory = errors.New("insufficient drawer inventory")

// ErrAmountMismatch indicates that declared denomination entries do not sum
// to the expected total.
var ErrAmountMismatch = errors.New("denomination entries do not match expected total")

// ErrConfiguration indicates commission or limit configuration that violates
// sanity bounds (e.g. a rate above the allowed cap).
var ErrConfiguration = errors.New("configuration error")

// ErrLimitExceeded indicates that a credit or daily usage ceiling would be
// breached by the requested amount.
var ErrLimitExceeded = errors.New("limit exceeded")

// ErrMalformedReference indicates a reference number that fails the
// length/digit format required by the biller integration.
var ErrMalformedReference = errors.New("malformed reference number")

// ErrParse indicates a settlement feed stream that could not be read.
// Per-line failures are skipped and counted instead, never fatal to the batch.
var ErrParse = errors.New("parse error")
