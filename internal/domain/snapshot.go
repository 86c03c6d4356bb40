package domain

import "time"

// Field names this pipeline owns inside the shared fx-rates collection.
// Every other field in a snapshot belongs to some other producer and is
// carried forward verbatim.
const (
	FieldDate  = "Date"
	FieldBid   = "ZiG_Bid"
	FieldAsk   = "ZiG_Ask"
	FieldMid   = "ZiG_Mid"
	FieldGold  = "Gold"
	FieldEGold = "eGold"
)

// SnapshotFields is the raw field set of one fx-rates document, excluding its
// storage identity.
type SnapshotFields map[string]any

// Clone returns a shallow copy so a new snapshot can be built from the
// current one without mutating it.
func (f SnapshotFields) Clone() SnapshotFields {
	out := make(SnapshotFields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Snapshot is one immutable document of the shared collection. The current
// snapshot is the one with the maximum AsOf; snapshots are superseded by
// inserting, never by updating.
type Snapshot struct {
	ID     string
	AsOf   time.Time
	Fields SnapshotFields
}
