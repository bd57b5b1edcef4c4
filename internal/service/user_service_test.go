package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskman/internal/errors"
	"taskman/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func strptr(s string) *string { return &s }

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterUserInput
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful registration",
			input: RegisterUserInput{Username: "alice", Email: "alice@example.com", Password: "secret"},
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:          "missing username",
			input:         RegisterUserInput{Username: "", Email: "a@b.com", Password: "x"},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: errors.ErrUsernameRequired,
		},
		{
			name:          "missing email",
			input:         RegisterUserInput{Username: "alice", Email: "", Password: "x"},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: errors.ErrEmailRequired,
		},
		{
			name:          "missing password",
			input:         RegisterUserInput{Username: "alice", Email: "a@b.com", Password: ""},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: errors.ErrPasswordRequired,
		},
		{
			name:  "duplicate username",
			input: RegisterUserInput{Username: "alice", Email: "new@example.com", Password: "secret"},
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
				m.On("FindByUsername", mock.Anything, "alice").Return(&model.User{Username: "alice"}, nil)
			},
			expectedError: errors.ErrUsernameTaken,
		},
		{
			name:  "duplicate email",
			input: RegisterUserInput{Username: "newname", Email: "alice@example.com", Password: "secret"},
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
				m.On("FindByUsername", mock.Anything, "newname").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewUserService(mockRepo, nil)
			user, err := svc.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.input.Username, user.Username)
				assert.Equal(t, tt.input.Email, user.Email)
				assert.False(t, user.CreatedDate.IsZero())
				// The stored value must be a hash, never the plaintext.
				assert.NotEqual(t, tt.input.Password, user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.input.Password)))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateUser_FirstNameOnly(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcryptCost)
	existing := &model.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hashed),
	}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := NewUserService(mockRepo, nil)
	user, err := svc.UpdateUser(context.Background(), 1, UpdateUserInput{FirstName: strptr("Alice")})

	assert.NoError(t, err)
	assert.Equal(t, "Alice", *user.FirstName)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, string(hashed), user.PasswordHash)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_UsernameConflict(t *testing.T) {
	existing := &model.User{ID: 1, Username: "alice", Email: "alice@example.com"}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(existing, nil)
	mockRepo.On("FindByUsername", mock.Anything, "bob").Return(&model.User{ID: 2, Username: "bob"}, nil)

	svc := NewUserService(mockRepo, nil)
	user, err := svc.UpdateUser(context.Background(), 1, UpdateUserInput{Username: strptr("bob")})

	assert.Nil(t, user)
	assert.Equal(t, errors.ErrUsernameTaken, err)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_SameUsernameAllowed(t *testing.T) {
	existing := &model.User{ID: 1, Username: "alice", Email: "alice@example.com"}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := NewUserService(mockRepo, nil)
	user, err := svc.UpdateUser(context.Background(), 1, UpdateUserInput{Username: strptr("alice")})

	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_RehashesPassword(t *testing.T) {
	existing := &model.User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "old-hash"}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := NewUserService(mockRepo, nil)
	user, err := svc.UpdateUser(context.Background(), 1, UpdateUserInput{Password: strptr("newsecret")})

	assert.NoError(t, err)
	assert.NotEqual(t, "old-hash", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newsecret")))
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewUserService(mockRepo, nil)
	user, err := svc.GetUser(context.Background(), 42)

	assert.Nil(t, user)
	assert.Equal(t, errors.ErrUserNotFound, err)
	mockRepo.AssertExpectations(t)
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Run("deletes existing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		mockRepo.On("Delete", mock.Anything, uint(1)).Return(nil)

		svc := NewUserService(mockRepo, nil)
		assert.NoError(t, svc.DeleteUser(context.Background(), 1))
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing user is not found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo, nil)
		assert.Equal(t, errors.ErrUserNotFound, svc.DeleteUser(context.Background(), 9))
		mockRepo.AssertExpectations(t)
	})
}
