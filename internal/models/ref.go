package models

import (
	"bytes"
	"encoding/json"
)

// Ref points at another backend record. The backend sends either the bare id or the
// populated document, so both shapes decode into a Ref.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts `"id"`, `null` or `{"_id": "...", "nom"|"titre"|"title": "..."}`.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	var doc struct {
		ID    string `json:"_id"`
		Nom   string `json:"nom"`
		Titre string `json:"titre"`
		Title string `json:"title"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*r = Ref{ID: doc.ID, Name: firstNonEmpty(doc.Nom, doc.Titre, doc.Title, doc.Name)}
	return nil
}

// MarshalJSON writes the bare id unless a display name is known.
func (r Ref) MarshalJSON() ([]byte, error) {
	switch {
	case r.ID == "":
		return []byte("null"), nil
	case r.Name == "":
		return json.Marshal(r.ID)
	}
	type plain Ref
	return json.Marshal(plain(r))
}

// Option is one entry of a selection control.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
