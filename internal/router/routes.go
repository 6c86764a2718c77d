package router

import (
	"strings"

	"github.com/patric-chuzhbe/usersvc/internal/user"
)

// Route identifies which handler a request path belongs to.
type Route int

const (
	RouteNotFound Route = iota
	RouteIndex
	RouteRand
	RouteUsers
	RouteUser
)

func (r Route) String() string {
	switch r {
	case RouteIndex:
		return "index"
	case RouteRand:
		return "rand"
	case RouteUsers:
		return "users"
	case RouteUser:
		return "user"
	}

	return "not found"
}

// Match is the result of classifying a request path.
// HasID is only ever true for RouteUser.
type Match struct {
	Route Route
	ID    user.ID
	HasID bool
}

const userPrefix = "/user/"

// Classify maps a URL path to a route.
//
//	/  /index  /index.htm  /index.html   RouteIndex
//	/rand  /rand/                        RouteRand
//	/users  /users/                      RouteUsers
//	/user/  /user/{digits}  /user/{digits}/   RouteUser
//
// Everything else is RouteNotFound. Digits too large for a user.ID
// classify as RouteUser without an ID.
func Classify(path string) Match {
	switch path {
	case "/", "/index", "/index.htm", "/index.html":
		return Match{Route: RouteIndex}
	case "/rand", "/rand/":
		return Match{Route: RouteRand}
	case "/users", "/users/":
		return Match{Route: RouteUsers}
	}

	rest, ok := strings.CutPrefix(path, userPrefix)
	if !ok {
		return Match{Route: RouteNotFound}
	}

	if rest == "" {
		return Match{Route: RouteUser}
	}

	digits := strings.TrimSuffix(rest, "/")
	if !isDigits(digits) {
		return Match{Route: RouteNotFound}
	}

	id, err := user.ParseID(digits)
	if err != nil {
		return Match{Route: RouteUser}
	}

	return Match{Route: RouteUser, ID: id, HasID: true}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
