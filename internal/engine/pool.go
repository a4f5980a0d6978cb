package engine

// Assigned returns the names currently sitting in any lane slot.
func Assigned(s State) map[string]bool {
	placed := make(map[string]bool, len(s.Lanes)*2)
	for _, l := range s.Lanes {
		if l.SlotA != "" {
			placed[l.SlotA] = true
		}
		if l.SlotB != "" {
			placed[l.SlotB] = true
		}
	}
	return placed
}

// Pool returns the registered players not placed in a lane, in registry
// order.
func Pool(s State) []Player {
	placed := Assigned(s)
	pool := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		if !placed[p.Name] {
			pool = append(pool, p)
		}
	}
	return pool
}

// BucketTier is the pool row a player is shown in: unset counts as Mid.
func BucketTier(t Tier) Tier {
	if t == TierUnset {
		return TierMid
	}
	return t
}

// TierBuckets partitions the pool by tier. All three tiers are always
// present in the result.
func TierBuckets(s State) map[Tier][]Player {
	buckets := map[Tier][]Player{
		TierHigh: {},
		TierMid:  {},
		TierLow:  {},
	}
	for _, p := range Pool(s) {
		t := BucketTier(p.Tier)
		buckets[t] = append(buckets[t], p)
	}
	return buckets
}
