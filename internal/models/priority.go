package models

// MaxPriority is the modulus that splits a raw priority value into its
// display value and the global flag. Priorities with a magnitude of
// MaxPriority or more order a plugin against the whole load order rather
// than against its neighbours.
const MaxPriority = 100000

// EncodePriority decomposes a raw priority into a normalized value in
// [0, MaxPriority) and the global-priority flag. Floored modulo keeps the
// normalized value non-negative for negative raw priorities, so -1 maps to
// MaxPriority-1.
func EncodePriority(raw int) (normalized int, isGlobal bool) {
	normalized = ((raw % MaxPriority) + MaxPriority) % MaxPriority

	magnitude := raw
	if magnitude < 0 {
		magnitude = -magnitude
	}
	return normalized, magnitude >= MaxPriority
}
