// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package api

import (
	"context"

	"github.com/z5labs/tigernet/example/restapi/user"
	"github.com/z5labs/tigernet/rest/bind"
	"github.com/z5labs/tigernet/rest/rester"
)

// UsersRester serves /users.
type UsersRester struct {
	users user.EntityManager
}

// NewUsersRester is resolved from the service registry on every request.
func NewUsersRester(users user.EntityManager) *UsersRester {
	return &UsersRester{users: users}
}

// Actions implements the [rester.ApiRester] interface.
func (*UsersRester) Actions() []rester.Action {
	return []rester.Action{
		rester.On("Get", rester.Getter(), bind.Named("id", bind.Query())),
		rester.On("Filter", rester.Poster("/by-filter"), bind.Named("filter", bind.Body())),
		rester.On("Create", rester.Poster("/new"), bind.Named("user", bind.Body())),
		rester.On("Update", rester.Putter("/update"), bind.Named("user", bind.Body())),
		rester.On("Delete", rester.Deleter("/delete"), bind.Named("id", bind.Query())),
	}
}

// Get returns the user with the given id.
func (r *UsersRester) Get(ctx context.Context, id int64) (user.User, error) {
	return r.users.GetByID(ctx, id)
}

// Filter returns every user selected by the filter.
func (r *UsersRester) Filter(ctx context.Context, filter user.Filter) ([]user.User, error) {
	return r.users.Get(ctx, filter)
}

// Create adds a new user.
func (r *UsersRester) Create(ctx context.Context, u user.User) (user.User, error) {
	return r.users.Create(ctx, u)
}

// Update replaces an existing user.
func (r *UsersRester) Update(ctx context.Context, u user.User) (user.User, error) {
	return r.users.Update(ctx, u)
}

// Delete removes the user with the given id.
func (r *UsersRester) Delete(ctx context.Context, id int64) error {
	return r.users.Delete(ctx, id)
}
