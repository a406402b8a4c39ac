package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/dkrylov/students-backend/internal/storage"
	"github.com/dkrylov/students-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStorage opens a fresh database in a per-test temp directory.
// The file is removed with the directory when the test finishes.
func newTestStorage(t *testing.T) *SQLite {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "students.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return st
}

func strPtr(s string) *string { return &s }

func testStudent(uniqueNumber string) types.Student {
	return types.Student{
		FirstName:    strPtr("Ivan"),
		LastName:     strPtr("Ivanov"),
		Patronymic:   strPtr("Ivanovich"),
		BirthDate:    strPtr("2001-02-02"),
		GroupName:    strPtr("A1"),
		UniqueNumber: uniqueNumber,
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	st := newTestStorage(t)

	student := testStudent("12345")
	require.NoError(t, st.CreateStudent(&student))
	assert.NotZero(t, student.ID, "create must write the generated id back")

	got, err := st.GetStudentByUniqueNumber("12345")
	require.NoError(t, err)

	assert.Equal(t, student.ID, got.ID)
	assert.Equal(t, "Ivan", *got.FirstName)
	assert.Equal(t, "Ivanov", *got.LastName)
	assert.Equal(t, "Ivanovich", *got.Patronymic)
	assert.Equal(t, "2001-02-02", *got.BirthDate)
	assert.Equal(t, "A1", *got.GroupName)
	assert.Equal(t, "12345", got.UniqueNumber)
}

func TestCreateWithNilFields(t *testing.T) {
	st := newTestStorage(t)

	student := types.Student{UniqueNumber: "777"}
	require.NoError(t, st.CreateStudent(&student))

	got, err := st.GetStudentByUniqueNumber("777")
	require.NoError(t, err)
	assert.Nil(t, got.FirstName)
	assert.Nil(t, got.BirthDate)
	assert.Equal(t, "777", got.UniqueNumber)
}

func TestCreateDuplicateUniqueNumber(t *testing.T) {
	st := newTestStorage(t)

	first := testStudent("12345")
	require.NoError(t, st.CreateStudent(&first))

	second := testStudent("12345")
	second.FirstName = strPtr("Petr")
	err := st.CreateStudent(&second)
	require.ErrorIs(t, err, storage.ErrDuplicateUniqueNumber)

	// The original record must be untouched by the failed create.
	got, err := st.GetStudentByUniqueNumber("12345")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "Ivan", *got.FirstName)
}

func TestGetMissingStudent(t *testing.T) {
	st := newTestStorage(t)

	_, err := st.GetStudentByUniqueNumber("nope")
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)
}

func TestPartialUpdatePreservesUntouchedFields(t *testing.T) {
	st := newTestStorage(t)

	student := types.Student{
		FirstName:    strPtr("A"),
		LastName:     strPtr("B"),
		UniqueNumber: "42",
	}
	require.NoError(t, st.CreateStudent(&student))

	err := st.UpdateStudentByUniqueNumber("42", types.StudentUpdate{
		FirstName: strPtr("C"),
	})
	require.NoError(t, err)

	got, err := st.GetStudentByUniqueNumber("42")
	require.NoError(t, err)
	assert.Equal(t, "C", *got.FirstName)
	assert.Equal(t, "B", *got.LastName, "absent fields must stay untouched")
	assert.Nil(t, got.GroupName)
}

func TestUpdateCanSetExplicitEmptyString(t *testing.T) {
	st := newTestStorage(t)

	student := testStudent("42")
	require.NoError(t, st.CreateStudent(&student))

	// An explicitly supplied empty string is a real value, not "absent".
	err := st.UpdateStudentByUniqueNumber("42", types.StudentUpdate{
		GroupName: strPtr(""),
	})
	require.NoError(t, err)

	got, err := st.GetStudentByUniqueNumber("42")
	require.NoError(t, err)
	require.NotNil(t, got.GroupName)
	assert.Equal(t, "", *got.GroupName)
	assert.Equal(t, "Ivan", *got.FirstName)
}

func TestUpdateWithNoFields(t *testing.T) {
	st := newTestStorage(t)

	student := testStudent("42")
	require.NoError(t, st.CreateStudent(&student))

	err := st.UpdateStudentByUniqueNumber("42", types.StudentUpdate{})
	assert.ErrorIs(t, err, storage.ErrNoFieldsToUpdate)
}

func TestUpdateMissingStudent(t *testing.T) {
	st := newTestStorage(t)

	err := st.UpdateStudentByUniqueNumber("nope", types.StudentUpdate{
		FirstName: strPtr("C"),
	})
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)
}

func TestDeleteThenGet(t *testing.T) {
	st := newTestStorage(t)

	student := testStudent("12345")
	require.NoError(t, st.CreateStudent(&student))

	require.NoError(t, st.DeleteStudentByUniqueNumber("12345"))

	_, err := st.GetStudentByUniqueNumber("12345")
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)
}

func TestDeleteMissingStudent(t *testing.T) {
	st := newTestStorage(t)

	err := st.DeleteStudentByUniqueNumber("nope")
	assert.ErrorIs(t, err, storage.ErrStudentNotFound)
}

func TestListStudents(t *testing.T) {
	st := newTestStorage(t)

	students, err := st.ListStudents()
	require.NoError(t, err)
	assert.NotNil(t, students, "empty list must be a non-nil slice")
	assert.Len(t, students, 0)

	for _, n := range []string{"1", "2", "3"} {
		s := testStudent(n)
		require.NoError(t, st.CreateStudent(&s))
	}

	students, err = st.ListStudents()
	require.NoError(t, err)
	require.Len(t, students, 3)

	// Ordering is store-default and not part of the contract; check
	// membership only.
	numbers := make(map[string]bool)
	for _, s := range students {
		numbers[s.UniqueNumber] = true
	}
	assert.Equal(t, map[string]bool{"1": true, "2": true, "3": true}, numbers)
}

func TestUniqueNumberExists(t *testing.T) {
	st := newTestStorage(t)

	exists, err := st.UniqueNumberExists("12345")
	require.NoError(t, err)
	assert.False(t, exists)

	student := testStudent("12345")
	require.NoError(t, st.CreateStudent(&student))

	exists, err = st.UniqueNumberExists("12345")
	require.NoError(t, err)
	assert.True(t, exists)

	// Matching is exact, not prefix.
	exists, err = st.UniqueNumberExists("123")
	require.NoError(t, err)
	assert.False(t, exists)
}
