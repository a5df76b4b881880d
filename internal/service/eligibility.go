package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/survey-service/internal/domain"
)

const alertDateLayout = "2006-01-02"

// Accepted ISO-8601 inputs. time.Parse accepts a fractional second after the
// seconds field even when the layout omits it.
var alertTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// AlertWindow is the survey period carried by a mail alert.
type AlertWindow struct {
	Start time.Time
	End   time.Time
}

// ParseAlertWindow parses both bounds of a mail alert window.
func ParseAlertWindow(start, end string) (AlertWindow, error) {
	s, err := parseAlertTime(start)
	if err != nil {
		return AlertWindow{}, err
	}
	e, err := parseAlertTime(end)
	if err != nil {
		return AlertWindow{}, err
	}
	return AlertWindow{Start: s, End: e}, nil
}

func parseAlertTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range alertTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// Recipient is a user who gains at least one surveyable department.
type Recipient struct {
	User       domain.User
	Department string
	Targets    []string
}

// Message renders the simulated mail alert line for the recipient.
func (r Recipient) Message(window AlertWindow) string {
	return fmt.Sprintf(
		"Simulating email to user '%s' (%s) from department '%s'. Can now survey: %s. Survey period: %s to %s.",
		r.User.Username,
		r.User.Email,
		r.Department,
		strings.Join(r.Targets, ", "),
		window.Start.Format(alertDateLayout),
		window.End.Format(alertDateLayout),
	)
}

// Eligibility is the outcome of resolving a pair set against users.
type Eligibility struct {
	// UsersConsidered counts users whose department matched a source name.
	// Zero means there were no relevant users at all.
	UsersConsidered int
	Recipients      []Recipient
	// UnresolvedSources and UnresolvedTargets count distinct department
	// ids in the pairs with no matching department row.
	UnresolvedSources int
	UnresolvedTargets int
}

// SourceDepartmentNames resolves the distinct from-ids of pairs to names,
// sorted. Ids with no department are dropped.
func SourceDepartmentNames(names map[int64]string, pairs []domain.Permission) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, pair := range pairs {
		name, ok := names[pair.FromDeptID]
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// ResolveEligibility works out, for each user, which department names the
// pairs let them survey. A user's department is matched by name. Users
// left with no resolvable target are excluded from Recipients but still
// counted in UsersConsidered. Recipients keep the order of users.
func ResolveEligibility(names map[int64]string, users []domain.User, pairs []domain.Permission) Eligibility {
	result := Eligibility{
		UsersConsidered: len(users),
		Recipients:      make([]Recipient, 0, len(users)),
	}

	unresolvedFrom := make(map[int64]struct{})
	unresolvedTo := make(map[int64]struct{})
	for _, pair := range pairs {
		if _, ok := names[pair.FromDeptID]; !ok {
			unresolvedFrom[pair.FromDeptID] = struct{}{}
		}
		if _, ok := names[pair.ToDeptID]; !ok {
			unresolvedTo[pair.ToDeptID] = struct{}{}
		}
	}
	result.UnresolvedSources = len(unresolvedFrom)
	result.UnresolvedTargets = len(unresolvedTo)

	for _, user := range users {
		targets := make([]string, 0)
		seen := make(map[string]struct{})
		for _, pair := range pairs {
			from, ok := names[pair.FromDeptID]
			if !ok || from != user.Department {
				continue
			}
			to, ok := names[pair.ToDeptID]
			if !ok {
				continue
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			targets = append(targets, to)
		}
		if len(targets) == 0 {
			continue
		}
		sort.Strings(targets)
		result.Recipients = append(result.Recipients, Recipient{
			User:       user,
			Department: user.Department,
			Targets:    targets,
		})
	}
	return result
}
