// Package domain contains entity without logic, just meta-data
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrInvalidUserID   = errors.New("invalid user id")
)

// UserID is the hex form of the user's ObjectID in the user store.
// On the wire it is written as {"$oid": "<hex>"}.
type UserID string

func ParseUserID(s string) (UserID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidUserID, s)
	}
	return UserID(oid.Hex()), nil
}

func UserIDFromObjectID(oid primitive.ObjectID) UserID { return UserID(oid.Hex()) }

func (id UserID) ObjectID() (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidUserID, string(id))
	}
	return oid, nil
}

func (id UserID) String() string { return string(id) }

type extendedOID struct {
	OID string `json:"$oid"`
}

func (id UserID) MarshalJSON() ([]byte, error) {
	return json.Marshal(extendedOID{OID: string(id)})
}

// UnmarshalJSON accepts both {"$oid": "<hex>"} and a bare "<hex>" string.
func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var raw string
	switch {
	case len(b) > 0 && b[0] == '"':
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	case len(b) > 0 && b[0] == '{':
		var ext extendedOID
		if err := json.Unmarshal(b, &ext); err != nil {
			return err
		}
		raw = ext.OID
	default:
		return fmt.Errorf("%w: %s", ErrInvalidUserID, b)
	}
	parsed, err := ParseUserID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

func NewUser(id UserID, username string) (*User, error) {
	u := &User{ID: id}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) SetUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	u.Username = username
	return nil
}
