package ratelimit

import "strings"

// MatchEndpoint returns the rule for a request, or nil when only the default limit applies.
// A rule path matches segment by segment; "*" matches any single segment and a trailing
// "/" matches any deeper path. Exact rules are preferred over wildcard and prefix rules.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && (path == "/health" || path == "/templates") {
		return &EndpointConfig{Path: path, Method: method}
	}

	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}
	for i := range configs {
		if configs[i].Method == method && matchPattern(configs[i].Path, path) {
			return &configs[i]
		}
	}
	return nil
}

func matchPattern(pattern, path string) bool {
	prefix := strings.HasSuffix(pattern, "/")
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")

	if len(got) < len(want) || (!prefix && len(got) != len(want)) {
		return false
	}
	if prefix && len(got) == len(want) {
		return false
	}
	for i, seg := range want {
		if seg != "*" && seg != got[i] {
			return false
		}
	}
	return true
}
