package user

import (
	"errors"

	"quicksend/internal/models"
	"quicksend/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	GetByID(id uint) (*models.User, error)
	Register(input *models.CreateUserInput) (*models.User, error)
}

type service struct {
	repo repositories.UserRepository
}

func NewService(repo repositories.UserRepository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) GetByID(id uint) (*models.User, error) {
	return s.repo.GetByID(id)
}

// Register creates a user and their wallet. The wallet always starts at
// balance zero; only the ledger can change it afterwards.
func (s *service) Register(input *models.CreateUserInput) (*models.User, error) {
	if input.Email == "" {
		return nil, errors.New("email is required")
	}
	if input.Phone == "" {
		return nil, errors.New("phone is required")
	}
	if len(input.Password) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}

	if existing, _ := s.repo.GetByEmail(input.Email); existing != nil {
		return nil, errors.New("user with this email already exists")
	}
	if existing, _ := s.repo.GetByPhone(input.Phone); existing != nil {
		return nil, errors.New("user with this phone number already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: string(hashedPassword),
		Role:     "user",
		Status:   "active",
	}

	if err := s.repo.CreateWithWallet(user); err != nil {
		return nil, err
	}

	return user, nil
}
