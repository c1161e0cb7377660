package service

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
)

func TestUserCreate_DefaultsToUserRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	mockUserRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil)

	resp, err := svc.Create(dto.CreateUserDTO{
		Username: "newuser",
		Email:    "new@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, "user", resp.Role)
	mockUserRepo.AssertExpectations(t)
}

func TestUserCreate_ReservedUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	resp, err := svc.Create(dto.CreateUserDTO{
		Username: "me",
		Email:    "me@example.com",
	})

	assert.ErrorIs(t, err, models.ErrUsernameReserved)
	assert.Nil(t, resp)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestUserCreate_IdentityTaken(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	mockUserRepo.On("Create", mock.AnythingOfType("*models.User")).
		Return(&pgconn.PgError{Code: "23505"})

	resp, err := svc.Create(dto.CreateUserDTO{
		Username: "taken",
		Email:    "taken@example.com",
	})

	assert.ErrorIs(t, err, ErrIdentityTaken)
	assert.Nil(t, resp)
}

func TestUserUpdate_RoleChange(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	existing := &models.User{ID: "user-id", Username: "plain", Email: "p@example.com", Role: models.RoleUser}
	mockUserRepo.On("FindByUsername", "plain").Return(existing, nil)
	mockUserRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil)

	role := "moderator"
	resp, err := svc.Update("plain", dto.UpdateUserDTO{Role: &role})

	assert.NoError(t, err)
	assert.Equal(t, "moderator", resp.Role)
}

func TestUserUpdate_NotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	mockUserRepo.On("FindByUsername", "ghost").Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.Update("ghost", dto.UpdateUserDTO{})

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, resp)
}

func TestUserDelete_NotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	mockUserRepo.On("Delete", "ghost").Return(gorm.ErrRecordNotFound)

	err := svc.Delete("ghost")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

// The profile payload has no role field, so the role a user holds going into
// a self-service edit is the role they hold coming out.
func TestUpdateProfile_KeepsRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo)

	existing := &models.User{ID: "user-id", Username: "plain", Email: "p@example.com", Role: models.RoleUser}
	mockUserRepo.On("FindByID", "user-id").Return(existing, nil)
	mockUserRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil)

	bio := "new bio"
	resp, err := svc.UpdateProfile("user-id", dto.UpdateProfileDTO{Bio: &bio})

	assert.NoError(t, err)
	assert.Equal(t, "new bio", resp.Bio)
	assert.Equal(t, "user", resp.Role)
}
