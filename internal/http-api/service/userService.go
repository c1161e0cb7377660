package service

import (
	"errors"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

type UserService interface {
	List(search string, page, pageSize int) (*dto.PaginatedUserResponse, error)
	Get(username string) (*dto.UserResponse, error)
	Create(req dto.CreateUserDTO) (*dto.UserResponse, error)
	Update(username string, req dto.UpdateUserDTO) (*dto.UserResponse, error)
	Delete(username string) error
	GetProfile(userID string) (*dto.UserResponse, error)
	UpdateProfile(userID string, req dto.UpdateProfileDTO) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(search string, page, pageSize int) (*dto.PaginatedUserResponse, error) {
	users, total, err := s.userRepo.GetAll(search, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *dto.FromModelToUserResponse(&users[i]))
	}
	return dto.NewPaginatedUserResponse(responses, int(total), page, pageSize), nil
}

func (s *userService) Get(username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Create(req dto.CreateUserDTO) (*dto.UserResponse, error) {
	if err := models.ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := models.ValidateEmail(req.Email); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if req.Role != "" {
		role = models.Role(req.Role)
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}

	if err := s.userRepo.Create(user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrIdentityTaken
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Update(username string, req dto.UpdateUserDTO) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Email != nil {
		if err := models.ValidateEmail(*req.Email); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		if !models.ValidRole(role) {
			return nil, errors.New("invalid role")
		}
		user.Role = role
	}

	if err := s.userRepo.Update(user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrIdentityTaken
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Delete(username string) error {
	if err := s.userRepo.Delete(username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) GetProfile(userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

// UpdateProfile applies a self-service edit. Role and staff status are not
// part of the payload, so they cannot change here.
func (s *userService) UpdateProfile(userID string, req dto.UpdateProfileDTO) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Email != nil {
		if err := models.ValidateEmail(*req.Email); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.userRepo.Update(user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrIdentityTaken
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}
