// Package objectid validates caller-supplied review identifiers.
//
// Every id that reaches the review store passes through Parse or ParseRaw first,
// so a value that could be read as a query predicate never gets that far.
package objectid

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/lllypuk/reviewguard/internal/domain/errs"
)

// hexLength is the length of the hex form of a store ObjectID.
const hexLength = 24

var (
	// ErrNotScalar is returned when the id arrives as an object, array or other non-string JSON value.
	ErrNotScalar = fmt.Errorf("%w: id must be a string", errs.ErrInvalidInput)

	// ErrMalformed is returned when the id string is not a 24-char hex ObjectID.
	ErrMalformed = fmt.Errorf("%w: id must be a 24 character hex string", errs.ErrInvalidInput)
)

// ID is a validated review identifier in canonical lowercase hex form.
type ID string

// New generates a fresh identifier.
func New() ID {
	return ID(bson.NewObjectID().Hex())
}

// Parse validates a plain string (path parameter, query value).
func Parse(s string) (ID, error) {
	if len(s) != hexLength {
		return "", ErrMalformed
	}
	oid, err := bson.ObjectIDFromHex(s)
	if err != nil {
		return "", ErrMalformed
	}
	return ID(oid.Hex()), nil
}

// ParseRaw validates an id taken from a JSON body. Only a JSON string token is
// accepted; objects such as {"$ne": null} are rejected before decoding.
func ParseRaw(raw json.RawMessage) (ID, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", ErrNotScalar
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", ErrNotScalar
	}
	return Parse(s)
}

// MustParse parses s or panics. Intended for tests and fixtures.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromObjectID converts a driver ObjectID.
func FromObjectID(oid bson.ObjectID) ID {
	return ID(oid.Hex())
}

// ObjectID converts the id back to the driver type.
func (id ID) ObjectID() (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(string(id))
	if err != nil {
		return bson.ObjectID{}, ErrMalformed
	}
	return oid, nil
}

// String returns the hex form.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool {
	return id == ""
}
