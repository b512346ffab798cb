// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/z5labs/tigernet/internal/try"
)

// UnexpectedStatusError is returned when the remote broker replies with
// a status code the [Remote] does not expect.
type UnexpectedStatusError struct {
	Status int
}

// Error implements the [builtin.error] interface.
func (e UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status from user broker: %d", e.Status)
}

// StatusCode implements the rest.StatusCoder interface.
func (UnexpectedStatusError) StatusCode() int {
	return http.StatusBadGateway
}

// Remote is an [EntityManager] backed by a remote user broker reachable
// over HTTP.
type Remote struct {
	client *http.Client
	base   *url.URL
}

// NewRemote returns a [Remote] talking to the broker at baseURL.
func NewRemote(client *http.Client, baseURL string) (*Remote, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	r := &Remote{
		client: client,
		base:   base,
	}
	return r, nil
}

// Get implements the [EntityManager] interface.
func (r *Remote) Get(ctx context.Context, filter Filter) ([]User, error) {
	var users []User
	err := r.do(ctx, http.MethodPost, "/users/search", filter, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetByID implements the [EntityManager] interface.
func (r *Remote) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.do(ctx, http.MethodGet, userPath(id), nil, &u)
	if isNotFound(err) {
		return User{}, NotFoundError{ID: id}
	}
	return u, err
}

// Create implements the [EntityManager] interface.
func (r *Remote) Create(ctx context.Context, u User) (User, error) {
	err := validate(u)
	if err != nil {
		return User{}, err
	}

	var created User
	err = r.do(ctx, http.MethodPost, "/users", u, &created)
	if isStatus(err, http.StatusConflict) {
		return User{}, ConflictError{ID: u.ID}
	}
	return created, err
}

// Update implements the [EntityManager] interface.
func (r *Remote) Update(ctx context.Context, u User) (User, error) {
	err := validate(u)
	if err != nil {
		return User{}, err
	}

	var updated User
	err = r.do(ctx, http.MethodPut, userPath(u.ID), u, &updated)
	if isNotFound(err) {
		return User{}, NotFoundError{ID: u.ID}
	}
	return updated, err
}

// Delete implements the [EntityManager] interface.
func (r *Remote) Delete(ctx context.Context, id int64) error {
	err := r.do(ctx, http.MethodDelete, userPath(id), nil, nil)
	if isNotFound(err) {
		return NotFoundError{ID: id}
	}
	return err
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}

func isStatus(err error, status int) bool {
	var serr UnexpectedStatusError
	return errors.As(err, &serr) && serr.Status == status
}

func isNotFound(err error) bool {
	return isStatus(err, http.StatusNotFound)
}

func (r *Remote) do(ctx context.Context, method, path string, in, out any) (err error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.base.JoinPath(path).String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer try.Close(&err, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return UnexpectedStatusError{Status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
