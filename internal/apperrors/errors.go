package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidConfiguration indicates a settlement session was configured with unusable arguments,
// e.g. an empty participant set or a missing base currency.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrUnknownParticipant indicates a debt or split referenced a participant outside the session.
var ErrUnknownParticipant = errors.New("unknown participant")

// ErrNotInitialized indicates a session operation was attempted before Setup.
var ErrNotInitialized = errors.New("settlement session not initialized")

// ErrNoExchangeRate indicates that no cached rate could serve a required conversion.
var ErrNoExchangeRate = errors.New("no exchange rate available")

// ErrCurrencyMismatch indicates an arithmetic or comparison operation across two currencies.
var ErrCurrencyMismatch = errors.New("currency mismatch")
