package game

// projectRoster builds the roster as viewerID may see it. A role is included
// verbatim when the deal is revealed, when the viewer is the host, or on the
// viewer's own entry; otherwise it stays nil. Projections are viewer-specific
// and must never be reused across viewers: host status and revealed can change
// between broadcasts.
func projectRoster(roster []*Player, revealed bool, viewerID string) []PlayerView {
	viewerIsHost := false
	for _, p := range roster {
		if p.id == viewerID {
			viewerIsHost = p.isHost
			break
		}
	}

	views := make([]PlayerView, 0, len(roster))
	for _, p := range roster {
		v := PlayerView{
			ID:          p.id,
			DisplayName: p.displayName,
			IsHost:      p.isHost,
			Connected:   p.connected,
		}
		if p.role != "" && (revealed || viewerIsHost || p.id == viewerID) {
			role := p.role
			v.Role = &role
		}
		views = append(views, v)
	}
	return views
}
