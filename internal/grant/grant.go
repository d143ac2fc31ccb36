// Package grant implements the access grant resolution engine: raw input
// rows are aggregated into one resolution unit per grant target, and each
// unit's role assertions collapse into a single permission decision.
package grant

import (
	"strings"

	"github.com/kazz187/repoguild/pkg/slug"
)

// Entry is one input row describing a desired access relationship.
// Role and Team may be empty.
type Entry struct {
	Repository string
	Subject    string
	Role       string
	Team       string
}

// Kind distinguishes team grants from direct collaborator grants.
type Kind int

const (
	KindTeam Kind = iota
	KindUser
)

func (k Kind) String() string {
	if k == KindUser {
		return "user"
	}
	return "team"
}

// Unit is one grant target plus every role string contributed to it, in
// input row order. Units are built once per run and are not mutated
// after aggregation.
type Unit struct {
	Kind       Kind
	Repository string
	// Team is the display name as entered; TeamSlug is the derived
	// forge identifier used for lookups and as part of the unit key.
	Team     string
	TeamSlug string
	// Subject is the collaborator login for user grants.
	Subject string
	Roles   []string
}

// Key identifies the unit: (repository, target identity). Rows that map
// to the same key merge into one unit.
func (u *Unit) Key() string {
	return u.Repository + "\x00" + u.Target()
}

// Target names the grant target for keys, logs, and outcome records.
func (u *Unit) Target() string {
	if u.Kind == KindUser {
		return "user/" + u.Subject
	}
	return "team/" + u.TeamSlug
}

// Aggregate groups entries into resolution units. Rows with a blank
// repository or no target identity (neither team nor subject) are
// filtered out, not errors. Duplicate keys merge their role lists in
// input order; unit order follows first appearance.
func Aggregate(entries []Entry) []*Unit {
	byKey := make(map[string]*Unit)
	var units []*Unit

	for _, e := range entries {
		repo := strings.TrimSpace(e.Repository)
		team := strings.TrimSpace(e.Team)
		subject := strings.TrimSpace(e.Subject)
		if repo == "" {
			continue
		}

		var unit *Unit
		switch {
		case team != "":
			unit = &Unit{
				Kind:       KindTeam,
				Repository: repo,
				Team:       team,
				TeamSlug:   slug.Make(team),
			}
		case subject != "":
			unit = &Unit{
				Kind:       KindUser,
				Repository: repo,
				Subject:    strings.ToLower(subject),
			}
		default:
			continue
		}

		existing, ok := byKey[unit.Key()]
		if !ok {
			byKey[unit.Key()] = unit
			units = append(units, unit)
			existing = unit
		}
		if role := strings.TrimSpace(e.Role); role != "" {
			existing.Roles = append(existing.Roles, role)
		}
	}
	return units
}
