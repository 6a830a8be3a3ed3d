package core

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/samber/lo"

	"chatbot-bootstrap/internal/types"
)

// defaultPorts maps URL schemes to the port used when the URL omits one.
var defaultPorts = map[string]int{
	"postgres":   5432,
	"postgresql": 5432,
	"mysql":      3306,
	"redis":      6379,
	"rediss":     6380,
	"amqp":       5672,
	"amqps":      5671,
	"http":       80,
	"https":      443,
}

// ParseEndpoint accepts "host:port", "[v6addr]:port" or a URL such as
// "redis://broker:6379/0". URLs without a port use the scheme default.
func ParseEndpoint(raw string) (types.Endpoint, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return types.Endpoint{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty endpoint")
	}
	if strings.Contains(value, "://") {
		return parseEndpointURL(value)
	}
	host, portText, err := net.SplitHostPort(value)
	if err != nil {
		return types.Endpoint{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid endpoint %q: expected host:port", value)).
			WithCause(err)
	}
	port, err := parsePort(portText, value)
	if err != nil {
		return types.Endpoint{}, err
	}
	if strings.TrimSpace(host) == "" {
		return types.Endpoint{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid endpoint %q: host is empty", value))
	}
	return types.Endpoint{Host: host, Port: port, Source: value}, nil
}

func parseEndpointURL(value string) (types.Endpoint, error) {
	parsed, err := url.Parse(value)
	if err != nil {
		return types.Endpoint{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid endpoint url %q", value)).
			WithCause(err)
	}
	host := parsed.Hostname()
	if host == "" {
		return types.Endpoint{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid endpoint url %q: host is empty", value))
	}
	scheme := strings.ToLower(parsed.Scheme)
	if portText := parsed.Port(); portText != "" {
		port, err := parsePort(portText, value)
		if err != nil {
			return types.Endpoint{}, err
		}
		return types.Endpoint{Host: host, Port: port, Source: redactURL(parsed)}, nil
	}
	port, ok := defaultPorts[scheme]
	if !ok {
		return types.Endpoint{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("endpoint url %q has no port and scheme %q has no default", redactURL(parsed), scheme))
	}
	return types.Endpoint{Host: host, Port: port, Source: redactURL(parsed)}, nil
}

// redactURL drops credentials so broker passwords never reach the logs.
func redactURL(u *url.URL) string {
	clone := *u
	clone.User = nil
	return clone.String()
}

func parsePort(text string, source string) (int, error) {
	port, err := strconv.Atoi(text)
	if err != nil || port < 1 || port > 65535 {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid port in endpoint %q", source))
	}
	return port, nil
}

// ParseEndpointList parses a list of endpoint specs. Each entry may itself
// hold several endpoints separated by commas or whitespace, which is how
// they arrive from a single environment variable.
func ParseEndpointList(values []string) ([]types.Endpoint, error) {
	var endpoints []types.Endpoint
	for _, value := range values {
		for _, field := range splitList(value) {
			endpoint, err := ParseEndpoint(field)
			if err != nil {
				return nil, err
			}
			endpoints = append(endpoints, endpoint)
		}
	}
	return UniqueEndpoints(endpoints), nil
}

// splitList splits one configured value on commas and whitespace.
func splitList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// ResolveEnvEndpoints turns environment references into endpoints. Each
// entry may hold several references separated by commas or whitespace.
// A reference is either "HOSTVAR:PORTVAR" (for example SQL_HOST:SQL_PORT) or
// the name of a variable holding an endpoint or URL (for example
// CELERY_BROKER_URL). Unset or empty variables are configuration errors.
func ResolveEnvEndpoints(refs []string, lookup func(string) (string, bool)) ([]types.Endpoint, error) {
	var endpoints []types.Endpoint
	var split []string
	for _, ref := range refs {
		split = append(split, splitList(ref)...)
	}
	for _, ref := range split {
		if hostVar, portVar, ok := strings.Cut(ref, ":"); ok {
			host, err := requireEnv(lookup, hostVar, ref)
			if err != nil {
				return nil, err
			}
			portText, err := requireEnv(lookup, portVar, ref)
			if err != nil {
				return nil, err
			}
			port, err := parsePort(portText, ref)
			if err != nil {
				return nil, err
			}
			endpoints = append(endpoints, types.Endpoint{Host: host, Port: port, Source: "env:" + ref})
			continue
		}
		value, err := requireEnv(lookup, ref, ref)
		if err != nil {
			return nil, err
		}
		endpoint, err := ParseEndpoint(value)
		if err != nil {
			return nil, err
		}
		endpoint.Source = "env:" + ref
		endpoints = append(endpoints, endpoint)
	}
	return endpoints, nil
}

func requireEnv(lookup func(string) (string, bool), name string, ref string) (string, error) {
	name = strings.TrimSpace(name)
	value, ok := lookup(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("environment variable %s referenced by %q is not set", name, ref))
	}
	return strings.TrimSpace(value), nil
}

// UniqueEndpoints removes repeated addresses, keeping the first occurrence.
func UniqueEndpoints(endpoints []types.Endpoint) []types.Endpoint {
	return lo.UniqBy(endpoints, func(e types.Endpoint) string {
		return e.Address()
	})
}
