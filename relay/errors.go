package relay

import "errors"

var (
	// ErrTokenNotSupported is returned for ledgers missing from the allow-list.
	ErrTokenNotSupported = errors.New("token not supported")
	// ErrAmountTooLow is returned for zero amounts.
	ErrAmountTooLow = errors.New("amount too low")
	// ErrContractPaused is returned by mutating operations while the relay is paused.
	ErrContractPaused = errors.New("relay is paused")
	// ErrInvalidDeposit is returned when attached payment is not the proof of intent.
	ErrInvalidDeposit = errors.New("invalid deposit amount")
	// ErrAccountNotRegistered is returned when account has no mirror record.
	ErrAccountNotRegistered = errors.New("account not registered")
	// ErrInsufficientStorageBalance is returned when withdrawal exceeds available storage balance.
	ErrInsufficientStorageBalance = errors.New("insufficient storage balance")
	// ErrNonZeroBalance is returned when account still holds tokens on unregistration.
	ErrNonZeroBalance = errors.New("non-zero token balance")
	// ErrUnauthorized is returned for admin operations invoked by non-admins.
	ErrUnauthorized = errors.New("unauthorized access")
	// ErrLowResource is returned when the treasury can't fund relay operations.
	ErrLowResource = errors.New("relay balance is too low")

	// ErrNotInitialized is returned on opening an empty store.
	ErrNotInitialized = errors.New("relay state is not initialized")
	// ErrAlreadyInitialized is returned on repeated initialization.
	ErrAlreadyInitialized = errors.New("relay state is already initialized")
	// ErrUnexpectedResult is returned when a remote call resolves with a value
	// of unexpected type.
	ErrUnexpectedResult = errors.New("unexpected remote call result")
)
