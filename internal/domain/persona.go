// Package domain contains core domain types for the SmartStudent application.
package domain

// PersonaID identifies one of the fixed conversational personas.
type PersonaID string

const (
	PersonaTeacher  PersonaID = "TEACHER"
	PersonaFriend   PersonaID = "FRIEND"
	PersonaExpert   PersonaID = "EXPERT"
	PersonaListener PersonaID = "LISTENER"
)

// Persona describes a conversational style the assistant can adopt.
// The set is fixed at process start and never mutated.
type Persona struct {
	ID          PersonaID `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Description string    `json:"description"`
}

var personas = []Persona{
	{
		ID:          PersonaTeacher,
		Name:        "Cô Tâm An",
		Role:        "Giáo viên Chủ nhiệm",
		Description: "Ấm áp, bao dung. Giọng văn như người mẹ, người cô, chuyên về định hướng và tháo gỡ mâu thuẫn.",
	},
	{
		ID:          PersonaFriend,
		Name:        "Bảo Anh",
		Role:        "Bạn thân ảo",
		Description: "Dùng teen code, gần gũi, thoải mái. Phù hợp để tám chuyện crush, bạn bè, áp lực học tập.",
	},
	{
		ID:          PersonaExpert,
		Name:        "Dr. Minh Triết",
		Role:        "Chuyên gia Tâm lý",
		Description: "Phân tích khoa học, điềm tĩnh. Cung cấp các bài tập hít thở, grounding 5-4-3-2-1 và tư duy biện chứng.",
	},
	{
		ID:          PersonaListener,
		Name:        "Gió Nhẹ",
		Role:        "Người lắng nghe im lặng",
		Description: "Chỉ lắng nghe, ghi nhận và đồng cảm. Không đưa lời khuyên trừ khi được yêu cầu.",
	},
}

// Personas returns the fixed persona set in display order.
func Personas() []Persona {
	out := make([]Persona, len(personas))
	copy(out, personas)
	return out
}

// PersonaByID looks up a persona by its identifier.
func PersonaByID(id PersonaID) (Persona, bool) {
	for _, p := range personas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}
