package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agritech/agrimarket/internal/domain"
	"github.com/agritech/agrimarket/pkg/common"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRequest is the signup form.
type RegisterRequest struct {
	Name     string `form:"name" validate:"required,max=200"`
	Email    string `form:"email" validate:"required,email,max=254"`
	Password string `form:"password" validate:"required,min=6,max=72"`
	Role     string `form:"role" validate:"required,oneof=farmer buyer"`
	Location string `form:"location" validate:"max=200"`
	Phone    string `form:"phone" validate:"max=32"`
}

var registerValidate = validator.New()

func validateRegister(req *RegisterRequest) error {
	if err := registerValidate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.ValidationError("account.register", registerMessage(verrs[0]))
		}
		return domain.ValidationError("account.register", err.Error())
	}
	return nil
}

func registerMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		return "Name is required and must be at most 200 characters"
	case "Email":
		return "Invalid email address"
	case "Password":
		return "Password must be between 6 and 72 characters"
	case "Role":
		return "Role must be farmer or buyer"
	case "Location":
		return "Location must be at most 200 characters"
	case "Phone":
		return "Phone must be at most 32 characters"
	default:
		return fe.Field() + " is invalid"
	}
}

// Service registers and authenticates marketplace users.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register trims the text fields, validates the form and stores the new user.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Location = strings.TrimSpace(req.Location)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validateRegister(&req); err != nil {
		return nil, err
	}
	email := req.Email

	var exists int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&exists).Error; err != nil {
		return nil, domain.PersistenceError("account.register", err)
	}
	if exists > 0 {
		return nil, domain.ValidationError("account.register", "Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:        common.UUIDint64(),
		Name:      req.Name,
		Email:     email,
		Password:  string(hash),
		Role:      req.Role,
		Location:  req.Location,
		Phone:     req.Phone,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, domain.PersistenceError("account.register", err)
	}
	zap.L().Info("user registered", zap.Int64("id", user.ID), zap.String("role", user.Role))
	return user, nil
}

// Authenticate checks credentials; unknown email and wrong password fail the same way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ValidationError("account.login", "Invalid email or password")
	}
	if err != nil {
		return nil, domain.PersistenceError("account.login", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, domain.ValidationError("account.login", "Invalid email or password")
	}
	return &user, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError("account.get", "User not found")
	}
	if err != nil {
		return nil, domain.PersistenceError("account.get", err)
	}
	return &user, nil
}
