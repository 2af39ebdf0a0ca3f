package game

// nextHost picks the replacement host after departingID drops: the earliest
// joined roster entry that is still connected. ok is false when nobody is left
// to promote, in which case the room must close.
func nextHost(roster []*Player, departingID string) (id string, ok bool) {
	for _, p := range roster {
		if p.connected && p.id != departingID {
			return p.id, true
		}
	}
	return "", false
}
