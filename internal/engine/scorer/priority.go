package scorer

// Priority is the discrete match class used as the primary sort key before
// the numeric relevance score. Lower values rank higher.
type Priority uint8

const (
	PriorityNameExact Priority = iota + 1
	PriorityAliasExact
	PriorityNamePrefix
	PriorityAliasPrefix
	PriorityNamePartial
	PriorityAliasPartial

	// priorityUnranked marks documents that collected score but never
	// classified; they sort after every classified match.
	priorityUnranked
)

func (p Priority) String() string {
	switch p {
	case PriorityNameExact:
		return "name-exact"
	case PriorityAliasExact:
		return "alias-exact"
	case PriorityNamePrefix:
		return "name-prefix"
	case PriorityAliasPrefix:
		return "alias-prefix"
	case PriorityNamePartial:
		return "name-partial"
	case PriorityAliasPartial:
		return "alias-partial"
	default:
		return "unranked"
	}
}
