package cascade

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is one parsed retweet path, root first. Elapsed belongs to the terminal user only.
type Path struct {
	Users   []int64
	Elapsed int64
	// Repeated is set when a user occurred more than once in the raw token.
	Repeated bool
}

// Terminal is the retweeting user of the path.
func (p Path) Terminal() int64 { return p.Users[len(p.Users)-1] }

// ParsePath parses `u1/u2/.../un:dt`. A path not starting with root gets the
// root prepended. Repeated users keep their first position; when the terminal
// user repeats, the path ends at its first occurrence.
func ParsePath(token string, root int64) (Path, error) {
	hops, dt, ok := strings.Cut(token, ":")
	if !ok || dt == "" {
		return Path{}, fmt.Errorf("%w: %q: missing elapsed time", ErrMalformedPath, token)
	}
	if strings.Contains(dt, ":") {
		return Path{}, fmt.Errorf("%w: %q: more than one ':'", ErrMalformedPath, token)
	}
	elapsed, err := strconv.ParseInt(dt, 10, 64)
	if err != nil || elapsed < 0 {
		return Path{}, fmt.Errorf("%w: %q: bad elapsed time %q", ErrMalformedPath, token, dt)
	}
	if hops == "" {
		return Path{}, fmt.Errorf("%w: %q: no users", ErrMalformedPath, token)
	}
	parts := strings.Split(hops, "/")
	raw := make([]int64, 0, len(parts)+1)
	for _, s := range parts {
		u, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Path{}, fmt.Errorf("%w: %q: bad user id %q", ErrMalformedPath, token, s)
		}
		raw = append(raw, u)
	}
	if raw[0] != root {
		raw = append([]int64{root}, raw...)
	}

	terminal := raw[len(raw)-1]
	seen := make(map[int64]struct{}, len(raw))
	users := make([]int64, 0, len(raw))
	repeated := false
	for _, u := range raw {
		if _, dup := seen[u]; dup {
			repeated = true
			continue
		}
		seen[u] = struct{}{}
		users = append(users, u)
		if u == terminal {
			break
		}
	}
	if len(users) < len(raw) {
		repeated = true
	}
	return Path{Users: users, Elapsed: elapsed, Repeated: repeated}, nil
}
