package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"user-auth/model"
)

const pgUniqueViolation = "23505"

// PostgresStore keeps users in a single gorm-managed table. Unique indexes on the
// nullable email, phone and google_id columns give sparse uniqueness.
type PostgresStore struct {
	DB *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var user model.User
	err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	return found(&user, err)
}

func (s *PostgresStore) FindOne(ctx context.Context, f Filter) (*model.User, error) {
	if f.IsEmpty() {
		return nil, errEmptyFilter
	}
	query := s.DB.WithContext(ctx).Model(&model.User{})
	if f.Email != "" {
		query = query.Where("email = ?", f.Email)
	}
	if f.Phone != "" {
		query = query.Where("phone = ?", f.Phone)
	}
	if f.GoogleID != "" {
		query = query.Where("google_id = ?", f.GoogleID)
	}
	var user model.User
	err := query.First(&user).Error
	return found(&user, err)
}

func (s *PostgresStore) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	stamp(u, true)
	return translate(s.DB.WithContext(ctx).Create(u).Error)
}

func (s *PostgresStore) Save(ctx context.Context, u *model.User) error {
	stamp(u, false)
	res := s.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", u.ID).
		Select("*").Omit("id", "created_at").
		Updates(u)
	if err := translate(res.Error); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListUpdatedSince(ctx context.Context, since time.Time, limit int) ([]model.User, error) {
	var users []model.User
	query := s.DB.WithContext(ctx).Where("updated_at >= ?", since).Order("updated_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return users, query.Find(&users).Error
}

func found(u *model.User, err error) (*model.User, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &DuplicateKeyError{Field: duplicateField(pgErr.ConstraintName), Err: err}
	}
	return err
}
