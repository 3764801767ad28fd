// Package types provides extra field types built on well-known parsing
// libraries. Each type implements tarams.Coercible and can be used directly
// as a field type or, after Register, by name.
package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	bsemver "github.com/blang/semver/v4"
	"github.com/google/uuid"

	tarams "github.com/bluzky/tarams"
	js "github.com/bluzky/tarams/jsonschema"
)

// Registered names.
const (
	NameUUID        = "uuid"
	NameLenientTime = "lenient_time"
	NameSemVer      = "semver"
)

// UUID coerces RFC 4122 strings (any form uuid.Parse accepts) and
// uuid.UUID values to uuid.UUID.
type UUID struct{}

func (UUID) Coerce(v any) (any, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case [16]byte:
		return uuid.UUID(t), nil
	case string:
		id, err := uuid.Parse(t)
		if err != nil {
			return nil, tarams.ErrInvalid
		}
		return id, nil
	}
	return nil, tarams.ErrInvalid
}

func (UUID) DescribeJSONSchema(s *js.Schema) {
	s.Type = "string"
	s.Format = "uuid"
}

// LenientTime coerces free-form date strings ("May 8, 2009 5:57pm",
// "2014/04/26", unix timestamps) to time.Time in Location (UTC when nil).
// Month-first is preferred for ambiguous numeric dates unless DayFirst is
// set.
type LenientTime struct {
	Location *time.Location
	DayFirst bool
}

func (lt LenientTime) Coerce(v any) (any, error) {
	loc := lt.Location
	if loc == nil {
		loc = time.UTC
	}
	switch t := v.(type) {
	case time.Time:
		return t.In(loc), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, tarams.ErrInvalid
		}
		parsed, err := dateparse.ParseIn(s, loc, dateparse.PreferMonthFirst(!lt.DayFirst))
		if err != nil {
			return nil, tarams.ErrInvalid
		}
		return parsed.In(loc), nil
	}
	return nil, tarams.ErrInvalid
}

func (LenientTime) DescribeJSONSchema(s *js.Schema) { s.Type = "string" }

// SemVer coerces semantic version strings to semver.Version. A leading "v"
// is accepted; Tolerant also accepts short forms such as "1.2".
type SemVer struct {
	Tolerant bool
}

// ErrVersion is returned for malformed versions.
var ErrVersion = errors.New("is not a valid semantic version")

func (sv SemVer) Coerce(v any) (any, error) {
	switch t := v.(type) {
	case bsemver.Version:
		return t, nil
	case string:
		var (
			ver bsemver.Version
			err error
		)
		if sv.Tolerant {
			ver, err = bsemver.ParseTolerant(t)
		} else {
			ver, err = bsemver.Parse(strings.TrimPrefix(t, "v"))
		}
		if err != nil {
			return nil, ErrVersion
		}
		return ver, nil
	}
	return nil, tarams.ErrInvalid
}

func (SemVer) DescribeJSONSchema(s *js.Schema) {
	s.Type = "string"
	s.Pattern = `^v?\d+\.\d+\.\d+`
}

// Register makes the types available as tarams.Kind("uuid"),
// tarams.Kind("lenient_time") and tarams.Kind("semver"). Calling it more
// than once is harmless.
func Register() error {
	for name, c := range map[string]tarams.Coercible{
		NameUUID:        UUID{},
		NameLenientTime: LenientTime{},
		NameSemVer:      SemVer{},
	} {
		if err := tarams.RegisterType(name, c); err != nil && !errors.Is(err, tarams.ErrDuplicate) {
			return fmt.Errorf("types: register %s: %w", name, err)
		}
	}
	return nil
}
