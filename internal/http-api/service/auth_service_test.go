package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/models"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsernameAndEmail(username, email string) (*models.User, error) {
	args := m.Called(username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(username string) error {
	args := m.Called(username)
	return args.Error(0)
}

func (m *MockUserRepository) SetConfirmationCode(id, code string) error {
	args := m.Called(id, code)
	return args.Error(0)
}

// MockMailer mocks the outbound mail channel
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(recipient, subject, body string) error {
	args := m.Called(recipient, subject, body)
	return args.Error(0)
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret-test-secret-test-secret",
		AccessTokenTTL:     24 * time.Hour,
		ConfirmCodeLength:  6,
		ConfirmCodeCharset: "0123456789",
		ConfirmCodeStub:    "wtPScP",
	}
}

func TestSignUp_NewUser(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	mockUserRepo.On("FindByUsernameAndEmail", "testuser", "test@example.com").
		Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil)
	mockUserRepo.On("SetConfirmationCode", mock.Anything, mock.AnythingOfType("string")).Return(nil)
	mockMail.On("Send", "test@example.com", mock.Anything, mock.Anything).Return(nil)

	user, err := authService.SignUp("testuser", "test@example.com")

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Len(t, user.ConfirmationCode, 6)
	for _, r := range user.ConfirmationCode {
		assert.Contains(t, "0123456789", string(r))
	}
	mockUserRepo.AssertExpectations(t)
	mockMail.AssertExpectations(t)
}

func TestSignUp_ReservedUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	user, err := authService.SignUp("me", "me@example.com")

	assert.ErrorIs(t, err, models.ErrUsernameReserved)
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestSignUp_InvalidUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	user, err := authService.SignUp("has spaces", "test@example.com")

	assert.ErrorIs(t, err, models.ErrUsernameInvalid)
	assert.Nil(t, user)
}

// A repeated signup for the same pair does not create a second user, it
// rotates the confirmation code.
func TestSignUp_ExistingPairRotatesCode(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	existing := &models.User{
		ID:               "user-id",
		Username:         "testuser",
		Email:            "test@example.com",
		Role:             models.RoleUser,
		ConfirmationCode: "111111",
	}
	mockUserRepo.On("FindByUsernameAndEmail", "testuser", "test@example.com").
		Return(existing, nil)
	mockUserRepo.On("SetConfirmationCode", "user-id", mock.AnythingOfType("string")).Return(nil)
	mockMail.On("Send", "test@example.com", mock.Anything, mock.Anything).Return(nil)

	user, err := authService.SignUp("testuser", "test@example.com")

	assert.NoError(t, err)
	assert.NotEqual(t, "111111", user.ConfirmationCode)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything)
	mockUserRepo.AssertExpectations(t)
}

// Reusing half of an existing (username, email) pair is a conflict; the
// unique constraint surfaces it.
func TestSignUp_PartialCollision(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	mockUserRepo.On("FindByUsernameAndEmail", "testuser", "other@example.com").
		Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*models.User")).
		Return(&pgconn.PgError{Code: "23505"})

	user, err := authService.SignUp("testuser", "other@example.com")

	assert.ErrorIs(t, err, ErrIdentityTaken)
	assert.Nil(t, user)
	mockMail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

// Delivery failure is reported, but the identity and code survive so the
// caller can simply sign up again.
func TestSignUp_DeliveryFailure(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	existing := &models.User{
		ID:       "user-id",
		Username: "testuser",
		Email:    "test@example.com",
	}
	mockUserRepo.On("FindByUsernameAndEmail", "testuser", "test@example.com").
		Return(existing, nil)
	mockUserRepo.On("SetConfirmationCode", "user-id", mock.AnythingOfType("string")).Return(nil)
	mockMail.On("Send", "test@example.com", mock.Anything, mock.Anything).
		Return(assert.AnError)

	user, err := authService.SignUp("testuser", "test@example.com")

	assert.ErrorIs(t, err, ErrCodeDelivery)
	assert.NotNil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestIssueToken_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	cfg := testAuthConfig()
	authService := NewAuthService(mockUserRepo, mockMail, cfg)

	user := &models.User{
		ID:               "user-id",
		Username:         "testuser",
		Role:             models.RoleUser,
		ConfirmationCode: "123456",
	}
	mockUserRepo.On("FindByUsername", "testuser").Return(user, nil)

	access, err := authService.IssueToken("testuser", "123456")

	assert.NoError(t, err)
	assert.NotEmpty(t, access)
	// Correct redemption does not burn the code
	mockUserRepo.AssertNotCalled(t, "SetConfirmationCode", mock.Anything, mock.Anything)

	claims, err := authService.ValidateToken(access)
	assert.NoError(t, err)
	assert.Equal(t, "user-id", claims.UserID)
	assert.Equal(t, "testuser", claims.Username)
	assert.Equal(t, "user", claims.Role)

	// Retrying the identical redemption still works
	access2, err := authService.IssueToken("testuser", "123456")
	assert.NoError(t, err)
	assert.NotEmpty(t, access2)
}

func TestIssueToken_UserNotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	mockUserRepo.On("FindByUsername", "nonexistent").Return(nil, gorm.ErrRecordNotFound)

	access, err := authService.IssueToken("nonexistent", "123456")

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, access)
}

// A wrong guess burns the stored code: the originally-correct code stops
// working until a fresh signup rotates it.
func TestIssueToken_WrongCodeBurns(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	user := &models.User{
		ID:               "user-id",
		Username:         "testuser",
		ConfirmationCode: "123456",
	}
	mockUserRepo.On("FindByUsername", "testuser").Return(user, nil)
	mockUserRepo.On("SetConfirmationCode", "user-id", "wtPScP").Return(nil)

	access, err := authService.IssueToken("testuser", "654321")

	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Empty(t, access)
	mockUserRepo.AssertExpectations(t)
}

// After a burn there is nothing left to burn; the code column stays at the
// stub without a second write.
func TestIssueToken_AlreadyBurned(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	user := &models.User{
		ID:               "user-id",
		Username:         "testuser",
		ConfirmationCode: "wtPScP",
	}
	mockUserRepo.On("FindByUsername", "testuser").Return(user, nil)

	access, err := authService.IssueToken("testuser", "123456")

	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Empty(t, access)
	mockUserRepo.AssertNotCalled(t, "SetConfirmationCode", mock.Anything, mock.Anything)
}

// Submitting the stub itself never authenticates, even though it matches the
// stored column after a burn.
func TestIssueToken_StubSubmission(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	user := &models.User{
		ID:               "user-id",
		Username:         "testuser",
		ConfirmationCode: "123456",
	}
	mockUserRepo.On("FindByUsername", "testuser").Return(user, nil)
	mockUserRepo.On("SetConfirmationCode", "user-id", "wtPScP").Return(nil)

	access, err := authService.IssueToken("testuser", "wtPScP")

	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Empty(t, access)
	mockUserRepo.AssertExpectations(t)
}

func TestValidateToken_Expired(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	cfg := testAuthConfig()
	authService := NewAuthService(mockUserRepo, mockMail, cfg)

	claims := Claims{
		UserID:   "user-id",
		Username: "testuser",
		Role:     "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
			Issuer:    "reviewhub",
			Subject:   "user-id",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(cfg.JWTSecret))

	validatedClaims, err := authService.ValidateToken(tokenString)

	assert.Error(t, err)
	assert.Nil(t, validatedClaims)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	cfg := testAuthConfig()
	authService := NewAuthService(mockUserRepo, mockMail, cfg)

	claims := Claims{
		UserID: "user-id",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "someone-else",
			Subject:   "user-id",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(cfg.JWTSecret))

	validatedClaims, err := authService.ValidateToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, validatedClaims)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	claims := Claims{
		UserID: "user-id",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "reviewhub",
			Subject:   "user-id",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte("another-secret-another-secret-xx"))

	validatedClaims, err := authService.ValidateToken(tokenString)

	assert.Error(t, err)
	assert.Nil(t, validatedClaims)
}
