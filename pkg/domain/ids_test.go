package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pubcred/pkg/domain-errors"
)

func TestParseCandidateID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		original := NewCandidateID()
		parsed, err := ParseCandidateID(original.String())
		require.NoError(t, err)
		assert.Equal(t, original, parsed)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		for _, input := range []string{
			"",
			"not-a-uuid",
			"00000000-0000-0000-0000-000000000000",
		} {
			_, err := ParseCandidateID(input)
			require.Error(t, err, "input %q", input)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})
}

func TestParseNoteID(t *testing.T) {
	original := NewNoteID()
	parsed, err := ParseNoteID(original.String())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)

	_, err = ParseNoteID("nope")
	require.Error(t, err)
}

func TestIDJSONRoundTrip(t *testing.T) {
	type doc struct {
		CandidateID CandidateID `json:"candidate_id"`
		NoteID      NoteID      `json:"note_id"`
	}
	original := doc{CandidateID: NewCandidateID(), NoteID: NewNoteID()}

	encoded, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), original.CandidateID.String(),
		"ids serialize as canonical UUID strings")

	var decoded doc
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, original, decoded)
}

func TestIsNil(t *testing.T) {
	assert.True(t, CandidateID{}.IsNil())
	assert.False(t, NewCandidateID().IsNil())
	assert.True(t, NoteID{}.IsNil())
	assert.False(t, NewNoteID().IsNil())
}
