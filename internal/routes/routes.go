// Package routes is the single table of navigation targets used by the page
// flows for links and redirects and by the server for legacy path redirects.
package routes

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Name identifies a logical page independently of its path.
type Name string

const (
	Home           Name = "home"
	Dashboard      Name = "dashboard"
	Login          Name = "login"
	Register       Name = "register"
	Signup         Name = "signup"
	ForgotPassword Name = "forgot-password"
	VerifyCode     Name = "verify-code"
	ResetPassword  Name = "reset-password"
)

// Query parameter keys carried between pages.
const (
	ParamContact    = "contact"
	ParamEmail      = "email"
	ParamCode       = "code"
	ParamRegistered = "registered"
)

var defaultPaths = map[Name]string{
	Home:           "/",
	Dashboard:      "/dashboard",
	Login:          "/auth/login",
	Register:       "/auth/register",
	Signup:         "/auth/signup",
	ForgotPassword: "/auth/forgot-password",
	VerifyCode:     "/auth/verify-code",
	ResetPassword:  "/auth/reset-password",
}

// legacyPaths are historical paths that pointed at the same pages.
var legacyPaths = map[string]Name{
	"/login":            Login,
	"/register":         Register,
	"/signup":           Signup,
	"/forgot-password":  ForgotPassword,
	"/verify-code":      VerifyCode,
	"/reset-password":   ResetPassword,
	"/client/dashboard": Dashboard,
}

// Table maps every Name to a path.
type Table struct {
	paths map[Name]string
}

// Default returns the canonical table.
func Default() Table {
	paths := make(map[Name]string, len(defaultPaths))
	for name, path := range defaultPaths {
		paths[name] = path
	}
	return Table{paths: paths}
}

// New returns the default table with overrides applied. Override keys must be
// known names and values must be absolute paths.
func New(overrides map[string]string) (Table, error) {
	t := Default()
	for key, path := range overrides {
		name := Name(key)
		if _, ok := defaultPaths[name]; !ok {
			return Table{}, fmt.Errorf("unknown route %q", key)
		}
		if !strings.HasPrefix(path, "/") {
			return Table{}, fmt.Errorf("route %q: path %q must start with /", key, path)
		}
		t.paths[name] = path
	}
	return t, nil
}

// Names lists every known route, sorted.
func Names() []Name {
	names := make([]Name, 0, len(defaultPaths))
	for name := range defaultPaths {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// IsZero reports whether t was never initialised.
func (t Table) IsZero() bool {
	return t.paths == nil
}

func (t Table) Path(name Name) string {
	if path, ok := t.paths[name]; ok {
		return path
	}
	return defaultPaths[Home]
}

// URL returns the path of name with query encoded. Empty values are dropped.
func (t Table) URL(name Name, query url.Values) string {
	path := t.Path(name)
	clean := url.Values{}
	for key, values := range query {
		for _, v := range values {
			if v != "" {
				clean.Add(key, v)
			}
		}
	}
	if len(clean) == 0 {
		return path
	}
	return path + "?" + clean.Encode()
}

// Legacy returns historical paths mapped to the page they now live at. Paths
// that collide with the current table are left out.
func (t Table) Legacy() map[string]Name {
	current := make(map[string]bool, len(t.paths))
	for _, path := range t.paths {
		current[path] = true
	}

	out := make(map[string]Name, len(legacyPaths))
	for path, name := range legacyPaths {
		if !current[path] {
			out[path] = name
		}
	}
	return out
}
