package librarycore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
)

func Test_CardType_Code_RoundTrip(t *testing.T) {
	tests := []struct {
		cardType librarycore.CardType
		code     string
	}{
		{cardType: librarycore.CardTypeStudent, code: "S"},
		{cardType: librarycore.CardTypeTeacher, code: "T"},
		{cardType: librarycore.CardTypeOther, code: "O"},
	}

	for _, tc := range tests {
		t.Run(string(tc.cardType), func(t *testing.T) {
			assert.Equal(t, tc.code, tc.cardType.Code(), "storage code should match")
			assert.Equal(t, tc.cardType, librarycore.CardTypeFromCode(tc.code), "code should map back to the card type")
		})
	}
}

func Test_CardTypeFromCode_UnknownCodeMapsToOther(t *testing.T) {
	assert.Equal(t, librarycore.CardTypeOther, librarycore.CardTypeFromCode("X"))
	assert.Equal(t, librarycore.CardTypeOther, librarycore.CardTypeFromCode(""))
}

func Test_CardType_IsValid(t *testing.T) {
	assert.True(t, librarycore.CardTypeStudent.IsValid())
	assert.True(t, librarycore.CardTypeTeacher.IsValid())
	assert.True(t, librarycore.CardTypeOther.IsValid())
	assert.False(t, librarycore.CardType("Visitor").IsValid())
}

func Test_Card_NaturalKeyEquals_MatchesOnValueEquality(t *testing.T) {
	card := librarycore.Card{Name: "Alice", Department: "CS", Type: librarycore.CardTypeStudent}

	other := librarycore.Card{ID: 77, Name: "Alice", Department: "CS", Type: librarycore.CardTypeStudent}
	assert.True(t, card.NaturalKeyEquals(other), "cards with equal natural keys should match regardless of id")

	differentName := card
	differentName.Name = "Bob"
	assert.False(t, card.NaturalKeyEquals(differentName))

	differentDepartment := card
	differentDepartment.Department = "Math"
	assert.False(t, card.NaturalKeyEquals(differentDepartment))

	differentType := card
	differentType.Type = librarycore.CardTypeTeacher
	assert.False(t, card.NaturalKeyEquals(differentType))
}
