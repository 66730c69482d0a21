package combat

// RollInitiative rolls initiative for every actor and sets the Initiative
// field. Formula: reflexes x2 + d10. Rolled once per encounter.
//
// Precondition: src must be non-nil.
// Postcondition: Each actor's Initiative is set.
func RollInitiative(actors []Actor, src Source) {
	for i := range actors {
		actors[i].Initiative = actors[i].Reflexes*2 + d10(src)
	}
}

// newTurnOrder returns roster indices sorted by initiative, highest first.
// Insertion sort with a strict comparison keeps tied rolls in roster
// order, so the first-registered actor wins ties.
func newTurnOrder(actors []Actor) []int {
	order := make([]int, len(actors))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && actors[order[j]].Initiative > actors[order[j-1]].Initiative; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}
