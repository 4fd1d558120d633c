package reports

import "sort"

// Clone returns a deep-enough copy for snapshotting: the map is copied, the
// descriptors are value types.
func (m MappingSet) Clone() MappingSet {
	if m == nil {
		return nil
	}
	out := make(MappingSet, len(m))
	for id, mapping := range m {
		out[id] = mapping
	}
	return out
}

// IsComplete reports whether every placeholder has a mapping. Advisory only;
// generation never checks it.
func IsComplete(placeholders []Placeholder, mappings MappingSet) bool {
	for _, ph := range placeholders {
		if _, ok := mappings[ph.ID]; !ok {
			return false
		}
	}
	return true
}

// MissingMappings lists placeholder ids without a mapping, in scan order.
func MissingMappings(placeholders []Placeholder, mappings MappingSet) []string {
	var missing []string
	for _, ph := range placeholders {
		if _, ok := mappings[ph.ID]; !ok {
			missing = append(missing, ph.ID)
		}
	}
	return missing
}

// StaleMappings lists mapping keys whose placeholder no longer exists, sorted
// for stable output. Stale entries are reported, never removed; only
// SaveMappings replaces the set.
func StaleMappings(placeholders []Placeholder, mappings MappingSet) []string {
	if len(mappings) == 0 {
		return nil
	}
	current := make(map[string]struct{}, len(placeholders))
	for _, ph := range placeholders {
		current[ph.ID] = struct{}{}
	}
	var stale []string
	for id := range mappings {
		if _, ok := current[id]; !ok {
			stale = append(stale, id)
		}
	}
	sort.Strings(stale)
	return stale
}

// placeholderByID resolves a placeholder from the inventory.
func placeholderByID(placeholders []Placeholder, id string) (Placeholder, bool) {
	for _, ph := range placeholders {
		if ph.ID == id {
			return ph, true
		}
	}
	return Placeholder{}, false
}
