package database

import (
	"context"
	"errors"
	"fmt"

	"attendance/models"

	"gorm.io/gorm"
)

// ErrDuplicate is returned when a work record already exists for the
// requested (person, yymm, dd) key.
var ErrDuplicate = errors.New("work record already exists for that day")

// Store wraps the gorm handle behind the small lookup/mutation methods the
// handlers and the aggregation worker depend on. Lookups return (nil, nil)
// when the row does not exist; mutations run in their own transaction so a
// failed commit never leaves a partial write.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Person(ctx context.Context, id uint) (*models.Person, error) {
	var person models.Person
	err := s.db.WithContext(ctx).First(&person, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get person %d: %w", id, err)
	}
	return &person, nil
}

func (s *Store) Persons(ctx context.Context) ([]models.Person, error) {
	var persons []models.Person
	if err := s.db.WithContext(ctx).Order("id").Find(&persons).Error; err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	return persons, nil
}

func (s *Store) CreatePerson(ctx context.Context, person *models.Person) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(person).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("create person: %w", ErrDuplicate)
			}
			return fmt.Errorf("create person: %w", err)
		}
		return nil
	})
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return &user, nil
}

func (s *Store) WorkRec(ctx context.Context, personID uint, yymm string, dd int) (*models.WorkRec, error) {
	var rec models.WorkRec
	err := s.db.WithContext(ctx).
		Where("person_id = ? AND yymm = ? AND dd = ?", personID, yymm, dd).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workrec %d/%s/%d: %w", personID, yymm, dd, err)
	}
	return &rec, nil
}

func (s *Store) MonthWorkRecs(ctx context.Context, personID uint, yymm string) ([]models.WorkRec, error) {
	var recs []models.WorkRec
	err := s.db.WithContext(ctx).
		Where("person_id = ? AND yymm = ?", personID, yymm).
		Order("dd").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list workrecs %d/%s: %w", personID, yymm, err)
	}
	return recs, nil
}

func (s *Store) CreateWorkRec(ctx context.Context, rec *models.WorkRec) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("create workrec: %w", ErrDuplicate)
			}
			return fmt.Errorf("create workrec: %w", err)
		}
		return nil
	})
}

func (s *Store) SaveWorkRec(ctx context.Context, rec *models.WorkRec) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rec).Error; err != nil {
			return fmt.Errorf("save workrec: %w", err)
		}
		return nil
	})
}

func (s *Store) DeleteWorkRec(ctx context.Context, rec *models.WorkRec) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(rec).Error; err != nil {
			return fmt.Errorf("delete workrec: %w", err)
		}
		return nil
	})
}

// EnableMonth recomputes the derived enabled flag for every record in the
// person's month: a day counts once it has a recorded value.
func (s *Store) EnableMonth(ctx context.Context, personID uint, yymm string) error {
	err := s.db.WithContext(ctx).
		Model(&models.WorkRec{}).
		Where("person_id = ? AND yymm = ?", personID, yymm).
		Update("enabled", gorm.Expr("value IS NOT NULL")).Error
	if err != nil {
		return fmt.Errorf("enable month %d/%s: %w", personID, yymm, err)
	}
	return nil
}
