package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aimd54/rocase/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return &user, nil
}

// GetByOpenID retrieves a user by the identity provider's stable login identifier.
func (r *UserRepository) GetByOpenID(ctx context.Context, openID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("open_id = ?", openID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by open_id %s: %w", openID, err)
	}
	return &user, nil
}

// List retrieves all users, optionally filtered by role.
func (r *UserRepository) List(ctx context.Context, role models.Role) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Update saves all fields of a user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdateRole sets the role of a user.
func (r *UserRepository) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("failed to update role of user %d: %w", id, result.Error)
	}
	return nil
}

// TouchSignIn records a sign-in at t and refreshes the profile snapshot.
func (r *UserRepository) TouchSignIn(ctx context.Context, user *models.User, t time.Time) error {
	updates := map[string]any{
		"last_signed_in": t,
		"name":           user.Name,
		"email":          user.Email,
		"login_method":   user.LoginMethod,
		"role":           user.Role,
	}
	if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to record sign-in of user %d: %w", user.ID, err)
	}
	user.LastSignedIn = t
	return nil
}
