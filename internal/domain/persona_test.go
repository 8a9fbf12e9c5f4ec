package domain

import "testing"

func TestPersonaByID(t *testing.T) {
	for _, id := range []PersonaID{PersonaTeacher, PersonaFriend, PersonaExpert, PersonaListener} {
		p, ok := PersonaByID(id)
		if !ok {
			t.Errorf("PersonaByID(%s) not found", id)
			continue
		}
		if p.ID != id || p.Name == "" || p.Role == "" {
			t.Errorf("incomplete persona for %s: %+v", id, p)
		}
	}

	if _, ok := PersonaByID("MENTOR"); ok {
		t.Error("unknown persona must not resolve")
	}
}

func TestPersonasReturnsCopy(t *testing.T) {
	first := Personas()
	first[0].Name = "đã sửa"

	if Personas()[0].Name == "đã sửa" {
		t.Error("Personas must not expose the internal slice")
	}
}
