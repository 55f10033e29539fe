package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_Public(t *testing.T) {
	u := &User{ID: "u1", Username: "alice", PasswordHash: "$2a$10$hash"}

	p := u.Public()

	assert.Empty(t, p.PasswordHash)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash, "original must be untouched")

	var nilUser *User
	assert.Nil(t, nilUser.Public())
}
