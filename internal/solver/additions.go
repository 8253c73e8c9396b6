package solver

import (
	"fmt"
	"strings"

	"github.com/klauern/amt/internal/conflict"
)

// Order decides how two different additions are combined.
type Order string

const (
	// OrderRemoteFirst writes the remote addition before the local one.
	OrderRemoteFirst Order = "remotefirst"
	// OrderLocalFirst writes the local addition before the remote one.
	OrderLocalFirst Order = "localfirst"
	// OrderRemoteOnly keeps the remote addition only.
	OrderRemoteOnly Order = "remoteonly"
	// OrderLocalOnly keeps the local addition only.
	OrderLocalOnly Order = "localonly"
	// OrderAsk asks the user for each conflict.
	OrderAsk Order = "ask"
	// OrderNone leaves the conflict alone.
	OrderNone Order = ""
)

// Orders returns the orders accepted on the command line.
func Orders() []Order {
	return []Order{OrderRemoteFirst, OrderLocalFirst, OrderRemoteOnly, OrderLocalOnly, OrderAsk}
}

// ParseOrder parses an order name. The empty string selects
// OrderRemoteFirst.
func ParseOrder(s string) (Order, error) {
	if s == "" {
		return OrderRemoteFirst, nil
	}
	o := Order(strings.ToLower(s))
	for _, known := range Orders() {
		if o == known {
			return o, nil
		}
	}
	return OrderNone, fmt.Errorf("invalid order %q", s)
}

// Description returns a short label for the order.
func (o Order) Description() string {
	switch o {
	case OrderRemoteFirst:
		return "Remote first"
	case OrderLocalFirst:
		return "Local first"
	case OrderRemoteOnly:
		return "Remote only"
	case OrderLocalOnly:
		return "Local only"
	case OrderAsk:
		return "Ask for each conflict"
	default:
		return "Ignore conflict"
	}
}

// OrderPrompt picks the order for one conflict. Returning OrderNone leaves
// it unresolved.
type OrderPrompt func(c *conflict.Conflict) (Order, error)

// Additions resolves conflicts whose base is empty: both sides added lines
// at the same place.
type Additions struct {
	order      Order
	whitespace bool
	ask        OrderPrompt
}

// NewAdditions returns an additions solver. With whitespace set, a base made
// only of whitespace counts as empty. ask may be nil, in which case
// OrderAsk leaves conflicts unresolved.
func NewAdditions(order Order, whitespace bool, ask OrderPrompt) *Additions {
	if order == OrderNone {
		order = OrderRemoteFirst
	}
	return &Additions{order: order, whitespace: whitespace, ask: ask}
}

// Name implements Solver.
func (a *Additions) Name() string { return "gen_additions" }

// Tag implements Solver.
func (a *Additions) Tag() string { return "adds" }

// Handle implements Solver.
func (a *Additions) Handle(c *conflict.Conflict) error {
	if !a.isAddition(c.Base()) {
		return nil
	}

	if c.Local() == c.Remote() {
		c.Resolve(c.Local())
		return nil
	}

	order := a.order
	if order == OrderAsk {
		if a.ask == nil {
			return nil
		}
		var err error
		if order, err = a.ask(c); err != nil {
			return fmt.Errorf("asking addition order: %w", err)
		}
	}

	switch order {
	case OrderRemoteFirst:
		c.Resolve(c.Remote() + c.Local())
	case OrderLocalFirst:
		c.Resolve(c.Local() + c.Remote())
	case OrderRemoteOnly:
		c.Resolve(c.Remote())
	case OrderLocalOnly:
		c.Resolve(c.Local())
	}
	return nil
}

func (a *Additions) isAddition(base string) bool {
	if base == "" {
		return true
	}
	return a.whitespace && strings.TrimSpace(base) == ""
}
