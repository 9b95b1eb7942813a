package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentRoundTrip(t *testing.T) {
	username := "alice"
	cases := map[string]*Student{
		"full": {
			UserID:    111,
			Username:  &username,
			Schedule:  "Mon 10:00",
			Homework:  "read chapter 3",
			Lectures:  []string{"a", "b"},
			CreatedAt: time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC),
		},
		"nil username": {
			UserID:    222,
			Username:  nil,
			Schedule:  "Tue 17:00",
			Lectures:  []string{},
			CreatedAt: time.Date(2025, 3, 1, 12, 30, 0, 500, time.UTC),
		},
	}

	for name, student := range cases {
		t.Run(name, func(t *testing.T) {
			encoded, err := EncodeStudent(student)
			require.NoError(t, err)

			decoded, err := DecodeStudent(encoded)
			require.NoError(t, err)
			assert.Equal(t, student, decoded)

			// serialize(deserialize(x)) == x, byte for byte
			reencoded, err := EncodeStudent(decoded)
			require.NoError(t, err)
			assert.Equal(t, encoded, reencoded)
		})
	}
}

func TestDecodeStudentMalformed(t *testing.T) {
	_, err := DecodeStudent([]byte("{not json"))
	assert.Error(t, err)
}

func TestLectureFileRoundTrip(t *testing.T) {
	file := &LectureFile{
		Filename:  "atoms.pdf",
		Filepath:  "/lectures/abc_atoms.pdf",
		CreatedAt: time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
	}

	encoded, err := EncodeLectureFile(file)
	require.NoError(t, err)

	decoded, err := DecodeLectureFile(encoded)
	require.NoError(t, err)
	assert.Equal(t, file, decoded)
}

func TestUserIDFormatting(t *testing.T) {
	id, err := ParseUserID(FormatUserID(123456789))
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), id)

	_, err = ParseUserID("abc")
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	username := "bob"
	withName := &Student{UserID: 1, Username: &username}
	assert.Equal(t, "bob", withName.DisplayName())

	without := &Student{UserID: 42}
	assert.Equal(t, "id:42", without.DisplayName())
}
