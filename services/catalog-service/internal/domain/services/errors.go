package services

import "errors"

// ----------------- catalog ------------------
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrSuppliersUnavailable = errors.New("all suppliers are unavailable")
)
