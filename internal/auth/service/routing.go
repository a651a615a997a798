package service

import "context"

// Route is the post-authentication routing decision. The tri-state contract
// (no local user / fresh / has-group) is load-bearing: callers branch UI
// routing on it, and a group with zero channels is a valid non-error state.
type Route struct {
	HasGroup  bool
	GroupID   string
	ChannelID string
}

// RouteFor decides where to send the user after authentication. At most one
// group is considered (earliest-created) and within it at most one channel
// (same rule). No group means the caller should route to group creation.
func (s *Service) RouteFor(ctx context.Context, userID string) (Route, error) {
	group, err := s.groups.FirstGroupByUser(ctx, userID)
	if err != nil {
		return Route{}, err
	}
	if group == nil {
		return Route{}, nil
	}
	route := Route{HasGroup: true, GroupID: group.ID}
	channel, err := s.groups.FirstChannelByGroup(ctx, group.ID)
	if err != nil {
		return Route{}, err
	}
	if channel != nil {
		route.ChannelID = channel.ID
	}
	return route, nil
}
