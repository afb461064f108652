package storage

import "github.com/google/uuid"

// IDGenerator produces globally unique opaque identifiers. Implementations
// must be safe for concurrent use.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random (version 4) UUIDs in canonical form.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

// NewID implements IDGenerator.
func (f IDGeneratorFunc) NewID() string { return f() }
