package server

import "encoding/json"

// LocalEditMarker is the entry field a user (or UI) sets on a target entry
// to protect a manual edit. The conflict detector escalates version
// mismatches on marked entries to Critical so auto-resolution never
// overwrites them.
const LocalEditMarker = "locallyModified"

// LocallyModified reports whether the definition carries the local-edit
// marker. Only meaningful on definitions decoded from a target file.
func (d *Definition) LocallyModified() bool {
	raw, ok := d.unknownFields[LocalEditMarker]
	if !ok {
		return false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return v
}

// MarkLocallyModified sets or clears the local-edit marker.
func (d *Definition) MarkLocallyModified(modified bool) {
	if d.unknownFields == nil {
		d.unknownFields = make(map[string]json.RawMessage)
	}
	if modified {
		d.unknownFields[LocalEditMarker] = json.RawMessage("true")
	} else {
		delete(d.unknownFields, LocalEditMarker)
	}
}
