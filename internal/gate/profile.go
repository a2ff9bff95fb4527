package gate

import "context"

// StaticProfile is an in-memory profile.
type StaticProfile struct {
	id          uint
	name        string
	permissions map[Permission]bool
}

func NewStaticProfile(id uint, name string, permissions ...Permission) *StaticProfile {
	p := &StaticProfile{id: id, name: name, permissions: make(map[Permission]bool)}
	for _, perm := range permissions {
		p.permissions[perm] = true
	}
	return p
}

func (p *StaticProfile) ID() uint     { return p.id }
func (p *StaticProfile) Name() string { return p.name }

func (p *StaticProfile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		perms = append(perms, perm)
	}
	return perms
}

func (p *StaticProfile) HasPermission(requested Permission) bool {
	return anyMatches(p.Permissions(), requested)
}

// anyMatches reports whether one of granted matches requested.
func anyMatches(granted []Permission, requested Permission) bool {
	for _, perm := range granted {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// HasAny is the matching helper for Profile implementations backed by a
// slice of permissions.
func HasAny(granted []Permission, requested Permission) bool {
	return anyMatches(granted, requested)
}

// StaticResolver maps users to fixed profiles.
type StaticResolver[U comparable] struct {
	profiles map[U]Profile
}

func NewStaticResolver[U comparable]() *StaticResolver[U] {
	return &StaticResolver[U]{profiles: make(map[U]Profile)}
}

func (r *StaticResolver[U]) Set(user U, profile Profile) {
	r.profiles[user] = profile
}

func (r *StaticResolver[U]) Resolve(_ context.Context, user U) (Profile, error) {
	return r.profiles[user], nil
}
