package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"bakeshop/internal/models"
	"bakeshop/internal/repositories"
)

type UserServiceTestSuite struct {
	suite.Suite
	userRepo *MockUserRepository
	service  UserService
	userID   uuid.UUID
	context  context.Context
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.userRepo = new(MockUserRepository)
	suite.service = NewUserService(suite.userRepo)
	suite.userID = uuid.New()
	suite.context = context.Background()
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (suite *UserServiceTestSuite) storedUser(password string, locked bool) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(suite.T(), err)
	return &models.User{
		ID:           suite.userID,
		Email:        "barista@bakeshop.local",
		FirstName:    "Grace",
		LastName:     "Baker",
		Role:         models.RoleBarista,
		PasswordHash: string(hash),
		Locked:       locked,
	}
}

func (suite *UserServiceTestSuite) TestCreate_Success() {
	user := &models.User{
		Email:     "Grace.Baker@Bakeshop.Local",
		FirstName: "Grace",
		LastName:  "Baker",
		Role:      models.RoleBarista,
	}

	suite.userRepo.On("Create", suite.context, user).Return(nil)

	err := suite.service.Create(suite.context, user, "correct horse battery")
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, user.ID)
	assert.Equal(suite.T(), "grace.baker@bakeshop.local", user.Email)
	assert.NoError(suite.T(), bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash), []byte("correct horse battery")))
}

func (suite *UserServiceTestSuite) TestCreate_ShortPassword() {
	user := &models.User{
		Email:     "grace.baker@bakeshop.local",
		FirstName: "Grace",
		LastName:  "Baker",
		Role:      models.RoleBarista,
	}

	err := suite.service.Create(suite.context, user, "short")
	assert.Error(suite.T(), err)
	suite.userRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *UserServiceTestSuite) TestCreate_DuplicateEmail() {
	user := &models.User{
		Email:     "grace.baker@bakeshop.local",
		FirstName: "Grace",
		LastName:  "Baker",
		Role:      models.RoleBarista,
	}

	suite.userRepo.On("Create", suite.context, user).Return(repositories.ErrDuplicateEmail)

	err := suite.service.Create(suite.context, user, "correct horse battery")
	assert.ErrorIs(suite.T(), err, ErrDuplicateEmail)
}

func (suite *UserServiceTestSuite) TestAuthenticate_Success() {
	stored := suite.storedUser("correct horse battery", false)

	suite.userRepo.On("GetByEmail", suite.context, "barista@bakeshop.local").Return(stored, nil)

	user, err := suite.service.Authenticate(suite.context, "barista@bakeshop.local", "correct horse battery")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), stored.ID, user.ID)
}

func (suite *UserServiceTestSuite) TestAuthenticate_WrongPassword() {
	stored := suite.storedUser("correct horse battery", false)

	suite.userRepo.On("GetByEmail", suite.context, "barista@bakeshop.local").Return(stored, nil)

	user, err := suite.service.Authenticate(suite.context, "barista@bakeshop.local", "wrong password")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
	assert.Nil(suite.T(), user)
}

func (suite *UserServiceTestSuite) TestAuthenticate_UnknownEmail() {
	suite.userRepo.On("GetByEmail", suite.context, "nobody@bakeshop.local").
		Return(nil, repositories.ErrNotFound)

	user, err := suite.service.Authenticate(suite.context, "nobody@bakeshop.local", "whatever pass")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
	assert.Nil(suite.T(), user)
}

func (suite *UserServiceTestSuite) TestAuthenticate_LockedUser() {
	stored := suite.storedUser("correct horse battery", true)

	suite.userRepo.On("GetByEmail", suite.context, "barista@bakeshop.local").Return(stored, nil)

	user, err := suite.service.Authenticate(suite.context, "barista@bakeshop.local", "correct horse battery")
	assert.ErrorIs(suite.T(), err, ErrUserLocked)
	assert.Nil(suite.T(), user)
}

func (suite *UserServiceTestSuite) TestDelete_OwnAccount() {
	err := suite.service.Delete(suite.context, suite.userID, suite.userID)
	assert.ErrorIs(suite.T(), err, ErrDeleteOwnAccount)
	suite.userRepo.AssertNotCalled(suite.T(), "Delete")
}

func (suite *UserServiceTestSuite) TestDelete_LockedUser() {
	stored := suite.storedUser("correct horse battery", true)

	suite.userRepo.On("GetByID", suite.context, suite.userID).Return(stored, nil)

	err := suite.service.Delete(suite.context, suite.userID, uuid.New())
	assert.ErrorIs(suite.T(), err, ErrUserLocked)
	suite.userRepo.AssertNotCalled(suite.T(), "Delete")
}

func (suite *UserServiceTestSuite) TestUpdatePassword_LockedUser() {
	stored := suite.storedUser("correct horse battery", true)

	suite.userRepo.On("GetByID", suite.context, suite.userID).Return(stored, nil)

	err := suite.service.UpdatePassword(suite.context, suite.userID, "new long password")
	assert.ErrorIs(suite.T(), err, ErrUserLocked)
	suite.userRepo.AssertNotCalled(suite.T(), "UpdatePassword")
}

func (suite *UserServiceTestSuite) TestEnsureAdmin_AlreadyExists() {
	suite.userRepo.On("CountByRole", suite.context, models.RoleAdmin).Return(1, nil)

	err := suite.service.EnsureAdmin(suite.context, "admin@bakeshop.local", "admin password")
	assert.NoError(suite.T(), err)
	suite.userRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *UserServiceTestSuite) TestEnsureAdmin_CreatesBootstrapAccount() {
	suite.userRepo.On("CountByRole", suite.context, models.RoleAdmin).Return(0, nil)
	suite.userRepo.On("Create", suite.context, mock.MatchedBy(func(user *models.User) bool {
		return user.Email == "admin@bakeshop.local" && user.Role == models.RoleAdmin
	})).Return(nil)

	err := suite.service.EnsureAdmin(suite.context, "admin@bakeshop.local", "admin password")
	assert.NoError(suite.T(), err)
	suite.userRepo.AssertExpectations(suite.T())
}
