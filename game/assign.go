package game

import "math/rand"

// assignRoles deals rolePool to the given players after a Fisher–Yates shuffle
// of a copy of the pool. shuffled[k] goes to orderedPlayerIDs[k], so the deal
// order is roster insertion order and the result conserves the pool multiset
// exactly. The length precondition is validated at room creation; a mismatch
// here means room state is corrupt and the caller must close the room.
func assignRoles(rng *rand.Rand, rolePool []string, orderedPlayerIDs []string) (map[string]string, error) {
	if len(rolePool) != len(orderedPlayerIDs) {
		return nil, errAssignMismatch
	}

	shuffled := make([]string, len(rolePool))
	copy(shuffled, rolePool)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	assigned := make(map[string]string, len(shuffled))
	for k, id := range orderedPlayerIDs {
		assigned[id] = shuffled[k]
	}
	return assigned, nil
}
