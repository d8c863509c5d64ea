package runtime

// Option is the read result of every state accessor. The execution substrate
// these methods are meant to be provable in cannot branch on true absence,
// so an absent value still carries a well-formed dummy of the right type and
// only the Present tag tells the two cases apart.
type Option[V any] struct {
	Present bool
	Value   V
}

func Some[V any](v V) Option[V] {
	return Option[V]{true, v}
}

func None[V any](dummy V) Option[V] {
	return Option[V]{false, dummy}
}
