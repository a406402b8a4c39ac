// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, service, and storage can all import types without depending
// on each other.
package types

// Student represents a single student record.
//
// The json:"..." tags match the field names the client application sends
// and expects back. The validate:"..." tags are checked by the
// go-playground/validator package on inbound payloads.
//
// Every display field is a *string rather than a string so that "the
// client did not send this field" (nil) can be told apart from "the
// client sent an empty string". The partial-update path depends on that
// distinction: only non-nil fields end up in the UPDATE statement.
type Student struct {
	// ID is assigned by the database on insert; clients never supply it.
	ID int64 `json:"id"`

	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Patronymic *string `json:"patronymic"`

	// BirthDate is an ISO-8601 calendar date, e.g. "2001-02-02".
	BirthDate *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`

	GroupName *string `json:"groupName"`

	// UniqueNumber is the externally visible business key. It is required
	// on creation and is the identifier carried in lookup/update/delete
	// URLs. Uniqueness is enforced by the storage layer.
	UniqueNumber string `json:"uniqueNumber" validate:"required"`
}

// StudentUpdate is the payload of a partial update. All fields are
// optional; a nil field is left untouched in storage. The unique number
// is taken from the URL, not the body, so it is not part of this struct.
type StudentUpdate struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Patronymic *string `json:"patronymic"`
	BirthDate  *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	GroupName  *string `json:"groupName"`
}

// IsEmpty reports whether the update carries no fields at all. Such an
// update must be rejected before any SQL is built for it.
func (u StudentUpdate) IsEmpty() bool {
	return u.FirstName == nil &&
		u.LastName == nil &&
		u.Patronymic == nil &&
		u.BirthDate == nil &&
		u.GroupName == nil
}
