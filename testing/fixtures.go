package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/openlaunch/open-launch/models"
	"github.com/openlaunch/open-launch/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plain-text password of every fixture user
const TestPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates a verified user with a random email
func (tf *TestFixtures) CreateTestUser(name string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		UUID:            uuid.New(),
		Email:           fmt.Sprintf("maker.%09d@example.com", rand.Intn(1000000000)),
		PasswordHash:    string(hashedPassword),
		EmailVerified:   true,
		EmailVerifiedAt: utils.UTCNowPtr(),
	}
	if name != "" {
		user.Name = &name
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}
	return user, nil
}

// CreateTestProject creates a project in status scheduled for launchDate.
// updatedAt is written explicitly so reaper boundaries can be tested.
func (tf *TestFixtures) CreateTestProject(name string, status models.LaunchStatus, launchDate time.Time, creatorID *uint, updatedAt time.Time) (*models.Project, error) {
	project := &models.Project{
		UUID:                uuid.New(),
		Slug:                fmt.Sprintf("%s-%06d", utils.Slugify(name), rand.Intn(1000000)),
		Name:                name,
		LaunchStatus:        status,
		LaunchType:          models.LaunchTypeFree,
		ScheduledLaunchDate: &launchDate,
		CreatedBy:           creatorID,
		Categories:          []string{"ai"},
		CreatedAt:           updatedAt,
		UpdatedAt:           updatedAt,
	}

	if err := tf.DB.DB.Create(project).Error; err != nil {
		return nil, fmt.Errorf("failed to create test project: %w", err)
	}
	return project, nil
}

// AddUpvotes creates n upvotes on a project from freshly created voters
func (tf *TestFixtures) AddUpvotes(projectID uint, n int) error {
	for i := 0; i < n; i++ {
		voter, err := tf.CreateTestUser("")
		if err != nil {
			return err
		}
		if err := tf.DB.DB.Create(&models.Upvote{ProjectID: projectID, UserID: voter.ID}).Error; err != nil {
			return fmt.Errorf("failed to create upvote: %w", err)
		}
	}
	return nil
}
