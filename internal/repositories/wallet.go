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

var ErrWalletNotFound = errors.New("wallet not found")

const walletCacheExpiration = 30 * time.Minute

// WalletRepository reads wallets and their entry history. All balance writes
// go through the ledger store, never through this repository.
type WalletRepository interface {
	GetByUserID(userID uint) (*models.Wallet, error)
	GetByID(id uint) (*models.Wallet, error)
	GetEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.TransactionEntry, int64, error)
	InvalidateCache(ctx context.Context, userID uint)
}

type walletRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewWalletRepository(db *gorm.DB, cacheService *cache.CacheService) WalletRepository {
	return &walletRepository{db: db, cache: cacheService}
}

func (r *walletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	if r.cache != nil {
		if wallet, err := r.cache.GetWallet(context.Background(), userID); err == nil {
			return wallet, nil
		}
	}

	var wallet models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if r.cache != nil {
		key := r.cache.GenerateKey("wallet", "user", userID)
		if err := r.cache.SetWithTTL(context.Background(), key, &wallet, walletCacheExpiration); err != nil {
			log.Printf("Failed to cache wallet for user %d: %v", userID, err)
		}
	}
	return &wallet, nil
}

func (r *walletRepository) GetByID(id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.First(&wallet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.TransactionEntry, int64, error) {
	var entries []models.TransactionEntry
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.TransactionEntry{}).
		Where("wallet_id = ?", walletID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count entries: %w", err)
	}

	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get entries: %w", err)
	}
	return entries, total, nil
}

// InvalidateCache drops the cached wallet for a user. The engines call this
// after every ledger apply so reads never serve a stale balance.
func (r *walletRepository) InvalidateCache(ctx context.Context, userID uint) {
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateWallet(ctx, userID); err != nil {
		log.Printf("Failed to invalidate wallet cache for user %d: %v", userID, err)
	}
}
