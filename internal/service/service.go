// Package service is a thin facade between the HTTP handlers and the
// storage layer. It carries no business logic of its own beyond
// generating fresh unique numbers; it exists so the handlers depend on
// one injected object rather than on storage wiring.
package service

import (
	"fmt"
	"math/rand"

	"github.com/dkrylov/students-backend/internal/storage"
	"github.com/dkrylov/students-backend/internal/types"
)

// maxGenerateAttempts bounds the unique-number retry loop. Without a
// bound a poisoned connection (probe always erroring as "exists") would
// spin forever; failing loudly is preferable.
const maxGenerateAttempts = 100

// StudentService forwards the five record operations to storage and owns
// unique-number generation.
type StudentService struct {
	storage storage.Storage
	rnd     *rand.Rand
}

// New returns a StudentService backed by the given storage. The random
// source is injected so tests can seed it deterministically; pass
// rand.New(rand.NewSource(time.Now().UnixNano())) in production wiring.
func New(st storage.Storage, rnd *rand.Rand) *StudentService {
	return &StudentService{storage: st, rnd: rnd}
}

// GetStudents returns all stored records.
func (s *StudentService) GetStudents() ([]types.Student, error) {
	return s.storage.ListStudents()
}

// GetStudentByUniqueNumber looks a record up by its business key.
func (s *StudentService) GetStudentByUniqueNumber(uniqueNumber string) (types.Student, error) {
	return s.storage.GetStudentByUniqueNumber(uniqueNumber)
}

// AddStudent creates a record; the generated id is written back into
// student by the storage layer.
func (s *StudentService) AddStudent(student *types.Student) error {
	return s.storage.CreateStudent(student)
}

// UpdateStudent applies a partial update to the record keyed by
// uniqueNumber.
func (s *StudentService) UpdateStudent(uniqueNumber string, upd types.StudentUpdate) error {
	return s.storage.UpdateStudentByUniqueNumber(uniqueNumber, upd)
}

// DeleteStudent removes the record keyed by uniqueNumber.
func (s *StudentService) DeleteStudent(uniqueNumber string) error {
	return s.storage.DeleteStudentByUniqueNumber(uniqueNumber)
}

// GenerateUniqueNumber draws random 6-digit candidates until the
// uniqueness probe reports one as free, up to maxGenerateAttempts.
func (s *StudentService) GenerateUniqueNumber() (string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		candidate := fmt.Sprintf("%06d", s.rnd.Intn(1_000_000))

		exists, err := s.storage.UniqueNumberExists(candidate)
		if err != nil {
			return "", fmt.Errorf("GenerateUniqueNumber: probe: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("GenerateUniqueNumber: no free number after %d attempts", maxGenerateAttempts)
}
