package issue

import (
	"context"
	"fmt"
	"strings"

	"jira/internal/dispatch"
	"jira/internal/logging"
	"jira/internal/tracker"
)

// moveIssue applies the workflow transition called name. When the issue does
// not offer it, the returned result is a failure listing what it does offer.
func moveIssue(ctx context.Context, inv *dispatch.Invocation, svc tracker.Service, key, name string) (tracker.Transition, *dispatch.Result, error) {
	issue, err := svc.GetIssue(ctx, key)
	if err != nil {
		return tracker.Transition{}, nil, err
	}
	transitions, err := svc.ListTransitions(ctx, issue.Key)
	if err != nil {
		return tracker.Transition{}, nil, err
	}
	move, ok := tracker.FindTransition(transitions, name)
	if !ok {
		available := make([]string, 0, len(transitions))
		for _, t := range transitions {
			available = append(available, fmt.Sprintf("%s (ID: %s)", t.Name, t.ID))
		}
		list := "none"
		if len(available) > 0 {
			list = strings.Join(available, ", ")
		}
		res := dispatch.Failed(fmt.Sprintf("No %q transition found for %s. Available transitions: %s", name, issue.Key, list))
		return tracker.Transition{}, &res, nil
	}

	inv.Logger().Debug("applying transition",
		logging.Issue(issue.Key),
		logging.String("transition", move.Name),
		logging.String("transition_id", move.ID),
	)
	if err := svc.ApplyTransition(ctx, issue.Key, move.ID); err != nil {
		return tracker.Transition{}, nil, err
	}
	return move, nil, nil
}
