package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"quicksend/internal/models"
	"quicksend/internal/repositories/cache"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

const userCacheExpiration = 24 * time.Hour

// UserRepository defines user persistence operations.
type UserRepository interface {
	CreateWithWallet(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByPhone(phone string) (*models.User, error)
	Update(user *models.User) error
	IncrementTokenVersion(userID uint) error
}

type userRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewUserRepository(db *gorm.DB, cacheService *cache.CacheService) UserRepository {
	return &userRepository{db: db, cache: cacheService}
}

// CreateWithWallet inserts the user together with an empty wallet in one
// database transaction, so no account ever exists without a wallet.
func (r *userRepository) CreateWithWallet(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		wallet := &models.Wallet{
			UserID:   user.ID,
			Currency: "USD",
			Status:   "active",
		}
		if err := tx.Create(wallet).Error; err != nil {
			return fmt.Errorf("failed to create wallet: %w", err)
		}
		user.Wallet = wallet
		return nil
	})
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	return r.getCached(r.cache.GenerateKey("user", "id", id), func(user *models.User) error {
		return r.db.First(user, id).Error
	})
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	return r.getCached(r.cache.GenerateKey("user", "email", email), func(user *models.User) error {
		return r.db.Where("email = ?", email).First(user).Error
	})
}

func (r *userRepository) GetByPhone(phone string) (*models.User, error) {
	return r.getCached(r.cache.GenerateKey("user", "phone", phone), func(user *models.User) error {
		return r.db.Where("phone = ?", phone).First(user).Error
	})
}

func (r *userRepository) getCached(cacheKey string, query func(*models.User) error) (*models.User, error) {
	if r.cache != nil {
		if user, err := r.cache.GetUser(context.Background(), cacheKey); err == nil {
			return user, nil
		}
	}

	var user models.User
	if err := query(&user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.SetWithTTL(context.Background(), cacheKey, &user, userCacheExpiration); err != nil {
			log.Printf("Failed to cache user: %v", err)
		}
	}
	return &user, nil
}

func (r *userRepository) Update(user *models.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if r.cache != nil {
		if err := r.cache.InvalidateUser(context.Background(), user); err != nil {
			log.Printf("Failed to invalidate user cache: %v", err)
		}
	}
	return nil
}

func (r *userRepository) IncrementTokenVersion(userID uint) error {
	user, err := r.GetByID(userID)
	if err != nil {
		return err
	}
	user.TokenVersion++
	return r.Update(user)
}
