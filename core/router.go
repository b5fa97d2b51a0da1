package core

import "strings"

// Route is the closed set of operations the simulator handles. Anything
// classified as RouteNone belongs to the real network stack and must be
// forwarded untouched.
type Route uint8

const (
	RouteNone Route = iota
	RouteAuthenticate
	RouteRefreshToken
	RouteRevokeToken
	RouteListUsers
)

func (r Route) String() string {
	switch r {
	case RouteAuthenticate:
		return "authenticate"
	case RouteRefreshToken:
		return "refresh-token"
	case RouteRevokeToken:
		return "revoke-token"
	case RouteListUsers:
		return "users"
	default:
		return "none"
	}
}

// Classify resolves a path and method to a Route once, at the boundary.
// Matching is by exact path suffix plus method equality, so the
// simulator works no matter what host or API prefix the frontend is
// configured with.
func Classify(path, method string) Route {
	switch {
	case method == "POST" && strings.HasSuffix(path, "/users/authenticate"):
		return RouteAuthenticate
	case method == "POST" && strings.HasSuffix(path, "/users/refresh-token"):
		return RouteRefreshToken
	case method == "POST" && strings.HasSuffix(path, "/users/revoke-token"):
		return RouteRevokeToken
	case method == "GET" && strings.HasSuffix(path, "/users"):
		return RouteListUsers
	default:
		return RouteNone
	}
}
