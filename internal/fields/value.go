package fields

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

// Candidate is a raw span matched by a catalogue pattern, before disambiguation.
type Candidate struct {
	Text   string
	Offset int
}

// Value is the final result for one field. The zero Value is absent.
type Value struct {
	Text    string
	Items   []string
	present bool
	list    bool
}

// Absent returns the explicit "nothing found" value.
func Absent() Value { return Value{} }

// Text returns a single-string value; an empty string is absent.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Text: s, present: true}
}

// Joined returns a value holding several sub-values that are displayed as one
// comma-separated string (design codes, categories).
func Joined(items []string) Value {
	if len(items) == 0 {
		return Value{}
	}
	cp := append([]string(nil), items...)
	return Value{Text: strings.Join(cp, ", "), Items: cp, present: true}
}

// List returns an ordered multi-valued value that serializes as an array.
func List(items []string) Value {
	v := Joined(items)
	v.list = v.present
	return v
}

func (v Value) IsAbsent() bool { return !v.present }

// IsList reports whether v serializes as a JSON array.
func (v Value) IsList() bool { return v.list }

func (v Value) String() string { return v.Text }

// parts returns the sub-values of v, splitting Text when Items is empty.
func (v Value) parts() []string {
	if v.IsAbsent() {
		return nil
	}
	if len(v.Items) > 0 {
		return v.Items
	}
	var out []string
	for _, p := range strings.Split(v.Text, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.IsAbsent():
		return []byte("null"), nil
	case v.list:
		return json.Marshal(v.Items)
	default:
		return json.Marshal(v.Text)
	}
}

// Record is the complete field set for one document. It is never mutated after
// the Builder returns it.
type Record struct {
	values map[constants.Field]Value
}

func newRecord(values map[constants.Field]Value) Record {
	r := Record{values: make(map[constants.Field]Value, len(values))}
	for _, f := range constants.AllFields() {
		v, ok := values[f]
		if !ok {
			v = absentFor(f)
		}
		r.values[f] = v
	}
	return r
}

// absentFor returns the sentinel value a field reports when nothing was found.
func absentFor(f constants.Field) Value {
	if f.UsesUnknownSentinel() {
		return Text(constants.UnknownValue)
	}
	return Absent()
}

// Get returns a copy of the value stored for f.
func (r Record) Get(f constants.Field) Value {
	if v, ok := r.values[f]; ok {
		if v.Items != nil {
			v.Items = append([]string(nil), v.Items...)
		}
		return v
	}
	return absentFor(f)
}

// Fields returns the field names in canonical order.
func (r Record) Fields() []constants.Field { return constants.AllFields() }

// Display returns every field rendered for tabular writers: absent values become
// constants.NullValue.
func (r Record) Display() map[constants.Field]string {
	out := make(map[constants.Field]string, len(r.values))
	for _, f := range constants.AllFields() {
		v := r.Get(f)
		if v.IsAbsent() {
			out[f] = constants.NullValue
			continue
		}
		out[f] = v.String()
	}
	return out
}

// MarshalJSON writes every field, absent ones as null, in canonical order.
func (r Record) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range constants.AllFields() {
		if i > 0 {
			b.WriteByte(',')
		}
		k, _ := json.Marshal(string(f))
		b.Write(k)
		b.WriteByte(':')
		v, err := r.Get(f).MarshalJSON()
		if err != nil {
			return nil, err
		}
		b.Write(v)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// UnmarshalJSON restores a record written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	values := make(map[constants.Field]Value, len(raw))
	for _, f := range constants.AllFields() {
		msg, ok := raw[string(f)]
		if !ok || string(msg) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			if f == constants.DesignCode || f == constants.RiskCategory ||
				f == constants.SiteClass || f == constants.SeismicDesignCategory {
				values[f] = Joined(Text(s).parts())
			} else {
				values[f] = Text(s)
			}
			continue
		}
		var items []string
		if err := json.Unmarshal(msg, &items); err != nil {
			return err
		}
		values[f] = List(items)
	}
	*r = newRecord(values)
	return nil
}
