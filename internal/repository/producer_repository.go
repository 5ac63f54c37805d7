package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/agricoop/api/internal/database"
	"github.com/stwalsh4118/agricoop/api/internal/models"
)

// UserRepository reads login accounts.
type UserRepository interface {
	// GetByUsername returns nil, nil when no account has that username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// ProducerRepository reads producer profiles.
type ProducerRepository interface {
	// GetByUserID returns the producer profile linked to a user, or nil, nil
	// when the user is not registered as a producer.
	GetByUserID(ctx context.Context, userID int64) (*models.Producer, error)

	// Get returns nil, nil when id does not exist.
	Get(ctx context.Context, id int64) (*models.Producer, error)
}

type userRepository struct {
	db *database.Database
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *database.Database) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, first_name, last_name, email, role, created_at
		FROM users
		WHERE username = $1
	`
	var u models.User
	err := r.db.Pool.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user %q: %w", username, err)
	}
	return &u, nil
}

type producerRepository struct {
	db *database.Database
}

// NewProducerRepository creates a new instance of ProducerRepository.
func NewProducerRepository(db *database.Database) ProducerRepository {
	return &producerRepository{db: db}
}

const producerSelect = `
	SELECT p.id, p.user_id,
		TRIM(u.first_name || ' ' || u.last_name),
		p.phone, p.district_id, p.registered_at, p.active
	FROM producers p
	JOIN users u ON u.id = p.user_id
`

func (r *producerRepository) scanOne(ctx context.Context, where string, arg int64) (*models.Producer, error) {
	var p models.Producer
	err := r.db.Pool.QueryRow(ctx, producerSelect+where, arg).Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.DistrictID, &p.RegisteredAt, &p.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query producer: %w", err)
	}
	return &p, nil
}

func (r *producerRepository) GetByUserID(ctx context.Context, userID int64) (*models.Producer, error) {
	return r.scanOne(ctx, `WHERE p.user_id = $1`, userID)
}

func (r *producerRepository) Get(ctx context.Context, id int64) (*models.Producer, error) {
	return r.scanOne(ctx, `WHERE p.id = $1`, id)
}
