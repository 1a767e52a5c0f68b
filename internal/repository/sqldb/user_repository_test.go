package sqldb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/studyflow/studyflow/internal/db"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/repository"
	"github.com/studyflow/studyflow/internal/repository/sqldb"
	"github.com/studyflow/studyflow/internal/testutil"
)

type UserRepositorySuite struct {
	suite.Suite
	db      *db.DB
	users   repository.UserRepository
	tokens  repository.TokenRepository
	reviews repository.ReviewRepository
}

func (s *UserRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.users = sqldb.NewUserRepository(s.db)
	s.tokens = sqldb.NewTokenRepository(s.db)
	s.reviews = sqldb.NewReviewRepository(s.db)
}

func (s *UserRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *UserRepositorySuite) TestCreateAndLookup() {
	ctx := context.Background()
	chatID := int64(42)

	id, err := s.users.Create(ctx, models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash", TelegramChatID: &chatID})
	s.Require().NoError(err)

	got, err := s.users.GetByEmail(ctx, "ana@example.com")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(id, got.ID)
	s.Equal("hash", got.PasswordHash)
	s.Require().NotNil(got.TelegramChatID)
	s.Equal(int64(42), *got.TelegramChatID)

	missing, err := s.users.GetByEmail(ctx, "nobody@example.com")
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *UserRepositorySuite) TestDuplicateEmail() {
	ctx := context.Background()

	_, err := s.users.Create(ctx, models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x"})
	s.Require().NoError(err)
	_, err = s.users.Create(ctx, models.User{Name: "Ana 2", Email: "ana@example.com", PasswordHash: "y"})
	s.Require().Error(err)
	s.True(db.IsUniqueViolation(err))
}

func (s *UserRepositorySuite) TestUpdateAndPassword() {
	ctx := context.Background()
	id := testutil.SeedUser(s.T(), s.db, "ana@example.com")

	u, err := s.users.Get(ctx, id)
	s.Require().NoError(err)
	u.Name = "Ana Clara"
	s.Require().NoError(s.users.Update(ctx, *u))
	s.Require().NoError(s.users.UpdatePassword(ctx, id, "new-hash"))

	u, err = s.users.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal("Ana Clara", u.Name)
	s.Equal("new-hash", u.PasswordHash)
}

func (s *UserRepositorySuite) TestTokens() {
	ctx := context.Background()
	id := testutil.SeedUser(s.T(), s.db, "ana@example.com")
	now := time.Now().UTC()

	s.Require().NoError(s.tokens.Create(ctx, models.AuthToken{TokenHash: "live", UserID: id, ExpiresAt: now.Add(time.Hour)}))
	s.Require().NoError(s.tokens.Create(ctx, models.AuthToken{TokenHash: "old", UserID: id, ExpiresAt: now.Add(-time.Hour)}))

	n, err := s.tokens.DeleteExpired(ctx, now)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	live, err := s.tokens.Get(ctx, "live")
	s.Require().NoError(err)
	s.Require().NotNil(live)
	s.Equal(id, live.UserID)

	s.Require().NoError(s.tokens.Delete(ctx, "live"))
	live, err = s.tokens.Get(ctx, "live")
	s.Require().NoError(err)
	s.Nil(live)
}

func (s *UserRepositorySuite) TestDueCounts() {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	ana := testutil.SeedUser(s.T(), s.db, "ana@example.com")
	bruno := testutil.SeedUser(s.T(), s.db, "bruno@example.com")
	anaSubject := testutil.SeedSubject(s.T(), s.db, ana, "History")
	brunoSubject := testutil.SeedSubject(s.T(), s.db, bruno, "Art")

	for _, topic := range []string{"Rome", "Greece"} {
		_, err := s.reviews.Create(ctx, models.NewReviewItem(ana, anaSubject, topic, now.AddDate(0, 0, -2)))
		s.Require().NoError(err)
	}
	_, err := s.reviews.Create(ctx, models.NewReviewItem(bruno, brunoSubject, "Baroque", now))
	s.Require().NoError(err)

	counts, err := s.users.DueCounts(ctx, now)
	s.Require().NoError(err)
	s.Require().Len(counts, 1)
	s.Equal(ana, counts[0].UserID)
	s.Equal(2, counts[0].Due)
}

func TestUserRepositorySuite(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}
