package alerts

import (
	"fmt"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

// TransitionPolicy decides whether an alert may move from one status to
// another. It is consulted only for alerts that exist.
type TransitionPolicy interface {
	Name() string
	Allow(from, to domain.AlertStatus) bool
}

// PermissivePolicy accepts any non-empty status, including values outside
// the known set.
type PermissivePolicy struct{}

func (PermissivePolicy) Name() string                       { return "permissive" }
func (PermissivePolicy) Allow(_, _ domain.AlertStatus) bool { return true }

// StrictPolicy only allows the known lifecycle:
//
//	active       -> acknowledged | resolved
//	acknowledged -> active | resolved
//	resolved     -> (terminal)
type StrictPolicy struct{}

var strictTransitions = map[domain.AlertStatus][]domain.AlertStatus{
	domain.StatusActive:       {domain.StatusAcknowledged, domain.StatusResolved},
	domain.StatusAcknowledged: {domain.StatusActive, domain.StatusResolved},
}

func (StrictPolicy) Name() string { return "strict" }

func (StrictPolicy) Allow(from, to domain.AlertStatus) bool {
	for _, next := range strictTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func PolicyByName(name string) (TransitionPolicy, error) {
	switch name {
	case "", "permissive":
		return PermissivePolicy{}, nil
	case "strict":
		return StrictPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown transition policy %q", name)
	}
}
