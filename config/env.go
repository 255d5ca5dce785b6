package config

import (
	"os"
	"strings"
)

// ValueOf resolves a config value referring to the environment.
//
//	addr              -> addr
//	$RELAY_ADDR       -> value of RELAY_ADDR, empty when unset
//	${RELAY_ADDR}     -> same as above
//	${RELAY_ADDR:-:80} -> value of RELAY_ADDR, ":80" when unset or empty
//
// Any other value, including a lone "$", is returned unchanged.
func ValueOf(s string) string {
	name, def, ok := envRef(s)
	if !ok {
		return s
	}
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// envRef splits an environment reference into a variable name and its
// default value
func envRef(s string) (name, def string, ok bool) {
	if len(s) < 2 || s[0] != '$' {
		return "", "", false
	}
	if s[1] != '{' {
		return s[1:], "", true
	}
	if !strings.HasSuffix(s, "}") || len(s) < 4 {
		return "", "", false
	}

	name = s[2 : len(s)-1]
	if i := strings.Index(name, ":-"); i >= 0 {
		name, def = name[:i], name[i+2:]
	}
	if name == "" {
		return "", "", false
	}
	return name, def, true
}
