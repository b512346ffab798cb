// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rester

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/z5labs/tigernet/rest/bind"
	"github.com/z5labs/tigernet/rest/route"

	"github.com/stretchr/testify/assert"
)

type HomeRester struct{}

func (*HomeRester) Actions() []Action {
	return []Action{
		On("Index", Getter()),
	}
}

func (*HomeRester) Index() map[string]string {
	return map[string]string{"message": "Hello World!"}
}

type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UsersController struct {
	prefix string
}

func NewUsersController() *UsersController {
	return &UsersController{prefix: "user-"}
}

func (*UsersController) Actions() []Action {
	return []Action{
		On("Get", Getter(), bind.Named("id", bind.Query())),
		On("Add", Poster("/New"), bind.Named("user", bind.Body())),
		On("Remove", Deleter("/delete")),
	}
}

func (c *UsersController) Get(ctx context.Context, id int64) (User, error) {
	if id == 0 {
		return User{}, errors.New("not found")
	}
	return User{ID: id, Name: c.prefix + "bob"}, nil
}

func (*UsersController) Add(u User) User {
	return u
}

func (*UsersController) Remove(id int64) error {
	return nil
}

type Orders struct{}

func (Orders) Actions() []Action {
	return []Action{
		On("List", Patcher("/all")),
	}
}

func (Orders) List() {}

type notARester struct{}

type multiVerbRester struct{}

func (multiVerbRester) Actions() []Action {
	return []Action{
		{Method: "Do", Verbs: []Verb{Getter(), Poster()}},
		{Method: "Skip"},
	}
}

func (multiVerbRester) Do() {}

func (multiVerbRester) Skip() {}

type ShowRester struct {
	prefix string
}

func (ShowRester) Actions() []Action {
	return []Action{
		On("Show", Getter()),
	}
}

func (r ShowRester) Show() string {
	return r.prefix
}

type TwiceRester struct{}

func (TwiceRester) Actions() []Action {
	return []Action{
		On("Get", Getter()),
		On("Get", Poster("/other")),
	}
}

func (TwiceRester) Get() {}

type badRester struct{}

func (badRester) Actions() []Action {
	return []Action{
		On("Missing", Getter()),
		On("TooManyParams", Getter(), bind.Named("a", bind.Body()), bind.Named("b", bind.Query())),
		On("BadReturn", Getter()),
		On("Variadic", Getter()),
	}
}

func (badRester) TooManyParams(a int) {}

func (badRester) BadReturn() (int, int) { return 0, 0 }

func (badRester) Variadic(xs ...int) {}

type panickingRester struct{}

func (panickingRester) Actions() []Action {
	return []Action{
		On("Boom", Getter()),
	}
}

func (panickingRester) Boom() { panic("boom") }

func TestBasePath(t *testing.T) {
	testCases := []struct {
		Name     string
		Type     reflect.Type
		Expected string
	}{
		{Name: "strips a trailing Rester", Type: reflect.TypeFor[*HomeRester](), Expected: "/Home"},
		{Name: "strips a trailing Controller", Type: reflect.TypeFor[UsersController](), Expected: "/Users"},
		{Name: "keeps a name without a suffix", Type: reflect.TypeFor[Orders](), Expected: "/Orders"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			assert.Equal(t, testCase.Expected, BasePath(testCase.Type))
		})
	}
}

type HomeResterController struct{}

func TestBasePath_SingleSuffix(t *testing.T) {
	t.Run("will only strip the last suffix", func(t *testing.T) {
		assert.Equal(t, "/HomeRester", BasePath(reflect.TypeFor[HomeResterController]()))
	})
}

func TestDiscover(t *testing.T) {
	t.Run("will discover every action", func(t *testing.T) {
		t.Run("if the candidates are constructors and values", func(t *testing.T) {
			resters, err := Discover(&HomeRester{}, NewUsersController, Orders{}, notARester{})
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Len(t, resters, 3) {
				return
			}

			type entry struct {
				Method route.Method
				Path   string
				Name   string
			}
			var routes []entry
			for _, r := range resters {
				for _, d := range r.Descriptors {
					routes = append(routes, entry{Method: d.Verb.Method, Path: d.Path(), Name: d.Name()})
				}
			}

			expected := []entry{
				{Method: route.MethodGet, Path: "/home", Name: "HomeRester.Index"},
				{Method: route.MethodGet, Path: "/users", Name: "UsersController.Get"},
				{Method: route.MethodPost, Path: "/users/new", Name: "UsersController.Add"},
				{Method: route.MethodDelete, Path: "/users/delete", Name: "UsersController.Remove"},
				{Method: route.MethodPatch, Path: "/orders/all", Name: "Orders.List"},
			}
			assert.Equal(t, expected, routes)
			assert.Equal(t, reflect.TypeFor[*UsersController](), resters[1].Type)
		})
	})

	t.Run("will describe the parameters", func(t *testing.T) {
		t.Run("with their static types and without the context", func(t *testing.T) {
			resters, err := Discover(NewUsersController)
			if !assert.Nil(t, err) {
				return
			}

			get := resters[0].Descriptors[0]
			if !assert.Len(t, get.Params, 1) {
				return
			}
			assert.Equal(t, "id", get.Params[0].Name)
			assert.Equal(t, reflect.TypeFor[int64](), get.Params[0].Type)
			assert.Equal(t, []bind.Source{bind.Query()}, get.Params[0].From)
		})

		t.Run("with no sources if they are undeclared", func(t *testing.T) {
			resters, err := Discover(NewUsersController)
			if !assert.Nil(t, err) {
				return
			}

			remove := resters[0].Descriptors[2]
			if !assert.Len(t, remove.Params, 1) {
				return
			}
			assert.Equal(t, "arg0", remove.Params[0].Name)
			assert.Empty(t, remove.Params[0].From)
		})
	})

	t.Run("will return an AmbiguousActionError", func(t *testing.T) {
		t.Run("if an action has zero or more than one verb", func(t *testing.T) {
			_, err := Discover(multiVerbRester{})

			var aerr AmbiguousActionError
			if !assert.ErrorAs(t, err, &aerr) {
				return
			}
			assert.Equal(t, "Do", aerr.Method)

			joined, ok := err.(interface{ Unwrap() []error })
			if !assert.True(t, ok) {
				return
			}
			inner, ok := joined.Unwrap()[0].(interface{ Unwrap() []error })
			if !assert.True(t, ok) {
				return
			}
			assert.Len(t, inner.Unwrap(), 2)
		})

		t.Run("if a method is listed by more than one action", func(t *testing.T) {
			resters, err := Discover(TwiceRester{})

			assert.Empty(t, resters)

			var aerr AmbiguousActionError
			if !assert.ErrorAs(t, err, &aerr) {
				return
			}
			assert.Equal(t, "Get", aerr.Method)
			assert.Equal(t, 2, aerr.Verbs)

			joined, ok := err.(interface{ Unwrap() []error })
			if !assert.True(t, ok) {
				return
			}
			inner, ok := joined.Unwrap()[0].(interface{ Unwrap() []error })
			if !assert.True(t, ok) {
				return
			}
			assert.Len(t, inner.Unwrap(), 1)
		})
	})

	t.Run("will return a definition error", func(t *testing.T) {
		t.Run("for every invalid action", func(t *testing.T) {
			resters, err := Discover(badRester{})

			assert.Empty(t, resters)

			var uerr UnknownMethodError
			if !assert.ErrorAs(t, err, &uerr) {
				return
			}
			assert.Equal(t, "Missing", uerr.Method)

			var serr ActionSignatureError
			assert.ErrorAs(t, err, &serr)
		})

		t.Run("if a constructor candidate returns an interface", func(t *testing.T) {
			_, err := Discover(func() ApiRester { return &HomeRester{} })

			var ierr InvalidCandidateError
			assert.ErrorAs(t, err, &ierr)
		})

		t.Run("if a value candidate is not a zero value", func(t *testing.T) {
			testCases := []struct {
				Name      string
				Candidate any
			}{
				{
					Name:      "value",
					Candidate: ShowRester{prefix: "x"},
				},
				{
					Name:      "pointer",
					Candidate: &UsersController{prefix: "x"},
				},
			}

			for _, testCase := range testCases {
				t.Run(testCase.Name, func(t *testing.T) {
					resters, err := Discover(testCase.Candidate)

					assert.Empty(t, resters)

					var ierr InvalidCandidateError
					assert.ErrorAs(t, err, &ierr)
				})
			}
		})

		t.Run("if the candidate is nil", func(t *testing.T) {
			_, err := Discover(nil)

			var ierr InvalidCandidateError
			assert.ErrorAs(t, err, &ierr)
		})
	})
}

func TestDescriptor_Invoke(t *testing.T) {
	resters, err := Discover(NewUsersController, panickingRester{})
	if !assert.Nil(t, err) {
		return
	}
	users := resters[0]
	recv := reflect.ValueOf(NewUsersController())

	t.Run("will return the value", func(t *testing.T) {
		t.Run("if the action succeeds", func(t *testing.T) {
			res, err := users.Descriptors[0].Invoke(context.Background(), recv, []reflect.Value{reflect.ValueOf(int64(7))})
			if !assert.Nil(t, err) {
				return
			}
			assert.True(t, res.HasValue)
			assert.Equal(t, User{ID: 7, Name: "user-bob"}, res.Value)
		})
	})

	t.Run("will return no value", func(t *testing.T) {
		t.Run("if the action only returns an error", func(t *testing.T) {
			res, err := users.Descriptors[2].Invoke(context.Background(), recv, []reflect.Value{reflect.ValueOf(int64(1))})
			if !assert.Nil(t, err) {
				return
			}
			assert.False(t, res.HasValue)
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the action returns one", func(t *testing.T) {
			_, err := users.Descriptors[0].Invoke(context.Background(), recv, []reflect.Value{reflect.ValueOf(int64(0))})
			assert.NotNil(t, err)
		})

		t.Run("if the action panics", func(t *testing.T) {
			_, err := resters[1].Descriptors[0].Invoke(context.Background(), reflect.ValueOf(panickingRester{}), nil)
			assert.NotNil(t, err)
		})
	})
}
