package entity

import "strconv"

// UserID identifies a stored user. The zero value means no id has been
// assigned yet; only the repository hands out ids.
type UserID int64

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// IsAssigned reports whether the id came from the store.
func (id UserID) IsAssigned() bool { return id != 0 }

// User is the aggregate root for the user domain.
//
// Password is kept as provided by the caller, no hashing is applied.
type User struct {
	ID        UserID
	FirstName string
	Email     string
	Password  string
}

// String masks the password so users can be logged safely.
func (u User) String() string {
	return "User[id=" + u.ID.String() + ", firstName=" + u.FirstName + ", email=" + u.Email + ", password=***]"
}

// UserCriteria is an example-based query. Nil fields do not constrain the
// match; set fields must match exactly. Password is deliberately absent.
type UserCriteria struct {
	FirstName *string
	Email     *string
}

// IsEmpty reports whether no criterion is set.
func (c UserCriteria) IsEmpty() bool {
	return c.FirstName == nil && c.Email == nil
}

// Matches applies the criteria to u.
func (c UserCriteria) Matches(u User) bool {
	if c.FirstName != nil && *c.FirstName != u.FirstName {
		return false
	}
	if c.Email != nil && *c.Email != u.Email {
		return false
	}
	return true
}
