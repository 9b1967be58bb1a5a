package dto

// Validatable is implemented by request types that can validate their fields.
// The Wrap functions in package server use it as a type constraint so every
// request is checked before its handler runs.
type Validatable interface {
	Validate() error
}
