// Package domain holds the value types for chapter loss tracking: units,
// loss causes, loss records, the persisted chapter blob, and the derived
// chapter summary.
//
// Values are immutable once created. Accessors and serializers hand out
// defensive copies so callers can never mutate recorded history through a
// returned reference.
package domain
