// Package identity maps free-text student and teacher names to stable
// numeric ids.
//
// A Registry holds every known (name, role) pair in first-seen order and
// the next id to hand out per role. Two id schemes are supported:
// SchemePerRole counts students and teachers independently from 1, and
// SchemeSigned gives students 1, 2, ... and teachers -1, -2, ... so the sign
// of an id encodes its role.
package identity

import (
	"fmt"
	"strings"

	"github.com/halaqa/halaqa/pkg/errors"
)

// Role of a person.
type Role string

// Roles.
const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// ParseRole parses a role cell.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", errors.NewValidationError("role", s, "must be student or teacher")
	}
	return r, nil
}

// Scheme selects how ids are assigned.
type Scheme int

// Schemes.
const (
	SchemePerRole Scheme = iota
	SchemeSigned
)

// String returns the scheme name.
func (s Scheme) String() string {
	switch s {
	case SchemePerRole:
		return "per-role"
	case SchemeSigned:
		return "signed"
	}
	return "unknown"
}

// RoleOf derives the role from a signed id.
func RoleOf(id int) (Role, bool) {
	switch {
	case id > 0:
		return RoleStudent, true
	case id < 0:
		return RoleTeacher, true
	}
	return "", false
}

// Person is an identity record.
type Person struct {
	ID   int
	Name string
	Role Role
	// BirthYear is carried through the signed table untouched.
	BirthYear string
}

type key struct {
	name string
	role Role
}

type idKey struct {
	id   int
	role Role
}

// Registry resolves (name, role) pairs to ids.
type Registry struct {
	scheme Scheme
	people []Person
	byKey  map[key]int
	byID   map[idKey]int

	nextStudent int
	nextTeacher int
}

// NewRegistry creates an empty registry for scheme.
func NewRegistry(scheme Scheme) *Registry {
	r := &Registry{
		scheme:      scheme,
		byKey:       make(map[key]int),
		byID:        make(map[idKey]int),
		nextStudent: 1,
		nextTeacher: 1,
	}
	if scheme == SchemeSigned {
		r.nextTeacher = -1
	}
	return r
}

// Scheme returns the id scheme of the registry.
func (r *Registry) Scheme() Scheme {
	return r.scheme
}

// Add registers a previously persisted person and advances the counters
// past its id. Duplicate names or ids within a role are rejected.
func (r *Registry) Add(p Person) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.NewValidationError("name", p.Name, "cannot be empty")
	}
	if !p.Role.Valid() {
		return errors.NewIdentityConflictError(p.Name, string(p.Role))
	}
	if err := r.checkID(p.ID, p.Role); err != nil {
		return err
	}

	k := key{p.Name, p.Role}
	if _, ok := r.byKey[k]; ok {
		return fmt.Errorf("%s %q: %w", p.Role, p.Name, errors.ErrAlreadyExists)
	}
	if _, ok := r.byID[idKey{p.ID, p.Role}]; ok {
		return fmt.Errorf("%s id %d: %w", p.Role, p.ID, errors.ErrAlreadyExists)
	}

	r.insert(p)
	r.advance(p.ID, p.Role)
	return nil
}

func (r *Registry) checkID(id int, role Role) error {
	if r.scheme == SchemeSigned {
		if got, ok := RoleOf(id); !ok || got != role {
			return errors.NewValidationError("id", id, fmt.Sprintf("sign does not match role %s", role))
		}
		return nil
	}
	if id < 1 {
		return errors.NewValidationError("id", id, "must be positive")
	}
	return nil
}

func (r *Registry) advance(id int, role Role) {
	switch {
	case role == RoleStudent && id >= r.nextStudent:
		r.nextStudent = id + 1
	case role == RoleTeacher && r.scheme == SchemeSigned && id <= r.nextTeacher:
		r.nextTeacher = id - 1
	case role == RoleTeacher && r.scheme == SchemePerRole && id >= r.nextTeacher:
		r.nextTeacher = id + 1
	}
}

func (r *Registry) insert(p Person) {
	r.byKey[key{p.Name, p.Role}] = len(r.people)
	r.byID[idKey{p.ID, p.Role}] = len(r.people)
	r.people = append(r.people, p)
}

// Resolve returns the id for (name, role), creating one when the pair is
// new. created reports whether a new person was registered. An unknown
// role is an IdentityConflictError.
func (r *Registry) Resolve(name string, role Role) (id int, created bool, err error) {
	if !role.Valid() {
		return 0, false, errors.NewIdentityConflictError(name, string(role))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, errors.NewValidationError("name", name, "cannot be empty")
	}

	if pos, ok := r.byKey[key{name, role}]; ok {
		return r.people[pos].ID, false, nil
	}

	id = r.next(role)
	r.insert(Person{ID: id, Name: name, Role: role})
	return id, true, nil
}

func (r *Registry) next(role Role) int {
	if role == RoleStudent {
		id := r.nextStudent
		r.nextStudent++
		return id
	}
	id := r.nextTeacher
	if r.scheme == SchemeSigned {
		r.nextTeacher--
	} else {
		r.nextTeacher++
	}
	return id
}

// Lookup returns the id of an existing (name, role) pair.
func (r *Registry) Lookup(name string, role Role) (int, bool) {
	pos, ok := r.byKey[key{strings.TrimSpace(name), role}]
	if !ok {
		return 0, false
	}
	return r.people[pos].ID, true
}

// People returns every person in first-seen order.
func (r *Registry) People() []Person {
	out := make([]Person, len(r.people))
	copy(out, r.people)
	return out
}

// Len returns the number of people.
func (r *Registry) Len() int {
	return len(r.people)
}

// Count returns the number of people with role.
func (r *Registry) Count(role Role) int {
	n := 0
	for _, p := range r.people {
		if p.Role == role {
			n++
		}
	}
	return n
}
