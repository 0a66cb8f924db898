package core

// Collection names one of the two independent record stores.
type Collection string

const (
	Daily  Collection = "daily"
	Weekly Collection = "weekly"
)

// Valid reports whether c is one of the two known collections.
func (c Collection) Valid() bool {
	return c == Daily || c == Weekly
}

// Record is the flat field-id to scalar-value mapping for one date key.
// The store is schema-agnostic: any mapping is accepted and persisted as-is;
// field semantics live entirely in configuration and the presentation layer.
type Record map[string]any

// Bool reads a boolean field. Absent or non-boolean fields read as false.
func (r Record) Bool(field string) bool {
	v, ok := r[field].(bool)
	return ok && v
}

// Number reads a numeric field. JSON decoding produces float64 for all
// numbers, but records built in memory may hold int values too.
func (r Record) Number(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Text reads a string field, returning "" when absent.
func (r Record) Text(field string) string {
	v, _ := r[field].(string)
	return v
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Extra numeric inputs an activity can carry alongside its checkbox.
const (
	ExtraNone      = ""
	ExtraMinutes   = "minutes"
	ExtraWordCount = "wordcount"
)

// Activity describes one configurable tracked activity. ID doubles as the
// record field-id for the checkbox; activities with an Extra also write a
// second numeric field under ExtraField().
type Activity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Extra    string `json:"extra,omitempty"`
}

// ExtraField returns the record field-id for the activity's numeric extra,
// or "" when it has none.
func (a Activity) ExtraField() string {
	switch a.Extra {
	case ExtraMinutes:
		return a.ID + "_minutes"
	case ExtraWordCount:
		return a.ID + "_wordcount"
	}
	return ""
}
