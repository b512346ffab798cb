// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package user manages the users exposed by the sample API.
package user

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// User is the entity managed by an [EntityManager].
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// Filter selects users. Zero valued fields match every user.
type Filter struct {
	Name   string `json:"name"`
	MinAge int    `json:"minAge"`
	MaxAge int    `json:"maxAge"`
}

// Matches reports whether u is selected by the filter. Names are
// compared case-insensitively.
func (f Filter) Matches(u User) bool {
	if f.Name != "" && !strings.EqualFold(f.Name, u.Name) {
		return false
	}
	if f.MinAge > 0 && u.Age < f.MinAge {
		return false
	}
	if f.MaxAge > 0 && u.Age > f.MaxAge {
		return false
	}
	return true
}

// EntityManager is the boundary between the API and wherever users are stored.
type EntityManager interface {
	Get(ctx context.Context, filter Filter) ([]User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id int64) error
}

// NotFoundError is returned when no user has the given id.
type NotFoundError struct {
	ID int64
}

// Error implements the [builtin.error] interface.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("user not found: %d", e.ID)
}

// StatusCode implements the rest.StatusCoder interface.
func (NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// ConflictError is returned when creating a user whose id is taken.
type ConflictError struct {
	ID int64
}

// Error implements the [builtin.error] interface.
func (e ConflictError) Error() string {
	return fmt.Sprintf("user already exists: %d", e.ID)
}

// StatusCode implements the rest.StatusCoder interface.
func (ConflictError) StatusCode() int {
	return http.StatusConflict
}

// InvalidUserError is returned when a user fails validation.
type InvalidUserError struct {
	Reason string
}

// Error implements the [builtin.error] interface.
func (e InvalidUserError) Error() string {
	return "invalid user: " + e.Reason
}

// StatusCode implements the rest.StatusCoder interface.
func (InvalidUserError) StatusCode() int {
	return http.StatusBadRequest
}

func validate(u User) error {
	if strings.TrimSpace(u.Name) == "" {
		return InvalidUserError{Reason: "name must not be empty"}
	}
	if u.Age < 0 {
		return InvalidUserError{Reason: "age must not be negative"}
	}
	return nil
}
