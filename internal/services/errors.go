package services

import "errors"

var (
	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrDuplicateProductName means a product with the same name already exists.
	ErrDuplicateProductName = errors.New("there is already a product with that name. Please select a unique name for the product")
	// ErrDuplicateEmail means a user with the same email already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrInvalidTransition means the order cannot move to the requested status
	// from its current one.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrLocationInUse means a pickup location still has orders referencing it.
	ErrLocationInUse = errors.New("pickup location is referenced by existing orders")
	// ErrProductInUse means a product still has order items referencing it.
	ErrProductInUse = errors.New("product is referenced by existing orders")
	// ErrInvalidCredentials means the email/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserLocked means the account is locked and cannot log in, be
	// modified or deleted.
	ErrUserLocked = errors.New("user has been locked and cannot be modified or deleted")
	// ErrDeleteOwnAccount means a user tried to delete their own account.
	ErrDeleteOwnAccount = errors.New("you cannot delete your own account")
)
