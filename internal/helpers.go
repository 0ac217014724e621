package internal

import "strconv"

// scalar lists the types a route or query value can be parsed into.
type scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the request-scoped value stored under key by a
// middleware, or the zero T when it is missing or of another type.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// Param parses a route parameter such as {format}. Unparseable values give
// the zero T.
func Param[T scalar](c Context, name string) T {
	v, _ := parseScalar[T](c.Param(name))
	return v
}

// Query parses a query parameter. Unparseable values give the zero T.
func Query[T scalar](c Context, name string) T {
	v, _ := parseScalar[T](c.Query(name))
	return v
}

// QueryDefault is Query with a fallback for absent or malformed values, e.g.
//
//	ratio := internal.QueryDefault(c, "pixel_ratio", 2.0)
func QueryDefault[T scalar](c Context, name string, fallback T) T {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	if v, ok := parseScalar[T](raw); ok {
		return v
	}
	return fallback
}

func parseScalar[T scalar](raw string) (T, bool) {
	var out T
	var (
		v   any
		err error
	)
	switch any(out).(type) {
	case string:
		v = raw
	case int:
		v, err = strconv.Atoi(raw)
	case int64:
		v, err = strconv.ParseInt(raw, 10, 64)
	case float64:
		v, err = strconv.ParseFloat(raw, 64)
	case bool:
		v, err = strconv.ParseBool(raw)
	default:
		return out, false
	}
	if err != nil {
		return out, false
	}
	return v.(T), true
}
