package librarycore

// CardType enumerates the kinds of membership cards.
type CardType string

const (
	CardTypeStudent CardType = "Student"
	CardTypeTeacher CardType = "Teacher"
	CardTypeOther   CardType = "Other"
)

// Code returns the single-letter storage encoding of the card type.
func (t CardType) Code() string {
	switch t {
	case CardTypeStudent:
		return "S"
	case CardTypeTeacher:
		return "T"
	default:
		return "O"
	}
}

// IsValid reports whether the card type is one of the known kinds.
func (t CardType) IsValid() bool {
	return t == CardTypeStudent || t == CardTypeTeacher || t == CardTypeOther
}

// CardTypeFromCode maps a storage code back to a CardType.
// Unknown codes map to CardTypeOther.
func CardTypeFromCode(code string) CardType {
	switch code {
	case "S":
		return CardTypeStudent
	case "T":
		return CardTypeTeacher
	default:
		return CardTypeOther
	}
}

// Card represents a membership card.
//
// ID is assigned by the storage engine on insert and written back onto the
// record that was passed to the register operation. The natural key of a card
// is the (Name, Department, Type) tuple.
type Card struct {
	ID         int64    `json:"card_id"`
	Name       string   `json:"name"`
	Department string   `json:"department"`
	Type       CardType `json:"type"`
}

// NaturalKeyEquals reports whether two cards share the same natural key.
func (c Card) NaturalKeyEquals(other Card) bool {
	return c.Name == other.Name &&
		c.Department == other.Department &&
		c.Type == other.Type
}
