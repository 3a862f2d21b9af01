package testutil

import (
	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
)

// UserBuilder provides a fluent interface for building UserIdentity values for testing.
type UserBuilder struct {
	user domainauth.UserIdentity
}

// NewUser creates a new UserBuilder with sensible defaults (a student).
func NewUser() *UserBuilder {
	return &UserBuilder{
		user: domainauth.UserIdentity{
			ID:    "1",
			Name:  "Test Student",
			Email: "student@example.com",
			Role:  domainauth.RoleStudent,
		},
	}
}

// WithID sets the user id.
func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.user.ID = id
	return b
}

// WithName sets the display name.
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.user.Name = name
	return b
}

// WithEmail sets the email.
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

// WithRole sets the role.
func (b *UserBuilder) WithRole(role domainauth.Role) *UserBuilder {
	b.user.Role = role
	return b
}

// Build returns the built identity.
func (b *UserBuilder) Build() domainauth.UserIdentity {
	return b.user
}

// Ptr returns a pointer to a copy of the built identity.
func (b *UserBuilder) Ptr() *domainauth.UserIdentity {
	u := b.user
	return &u
}

// Student, Teacher and Admin are shorthands for common identities.
func Student() domainauth.UserIdentity { return NewUser().Build() }

func Teacher() domainauth.UserIdentity {
	return NewUser().WithID("2").WithName("Test Teacher").WithEmail("teacher@example.com").
		WithRole(domainauth.RoleTeacher).Build()
}

func Admin() domainauth.UserIdentity {
	return NewUser().WithID("3").WithName("Test Admin").WithEmail("admin@example.com").
		WithRole(domainauth.RoleAdmin).Build()
}
