package repository_test

import (
	"context"
	"testing"
	"time"

	"codegen-server/internal/database"
	"codegen-server/internal/domain"
	"codegen-server/internal/repository"
	"codegen-server/migrations"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// RepositoryTestSuite поднимает настоящий PostgreSQL в контейнере и проверяет
// репозиторий против реальной схемы.
type RepositoryTestSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	pool        *pgxpool.Pool
	repo        repository.GenerationRepository
}

func (s *RepositoryTestSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.pool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err)

	migrator := database.NewMigrator(database.MigratorConfig{
		MigrationsPath: ".",
		MigrationsFS:   migrations.FS,
	}, s.pool)
	require.NoError(s.T(), migrator.Up())

	s.repo = repository.NewPgGenerationRepository(s.pool, zap.NewNop())
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *RepositoryTestSuite) newRecord(userID uuid.UUID) *domain.GenerationRecord {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.GenerationRecord{
		ID:         uuid.New(),
		UserID:     userID,
		Prompt:     "build a todo api",
		Stack:      domain.StackNode,
		OutputMode: domain.OutputModeDownload,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *RepositoryTestSuite) TestCreateAndGet() {
	record := s.newRecord(uuid.New())
	require.NoError(s.T(), s.repo.Create(s.ctx, record))

	got, err := s.repo.GetByID(s.ctx, record.ID)
	require.NoError(s.T(), err)
	s.Equal(record.ID, got.ID)
	s.Equal(record.Prompt, got.Prompt)
	s.Equal(domain.StatusPending, got.Status)
	s.Empty(got.Files)
}

func (s *RepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.GetByID(s.ctx, uuid.New())
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *RepositoryTestSuite) TestMarkCompletedPersistsResult() {
	record := s.newRecord(uuid.New())
	require.NoError(s.T(), s.repo.Create(s.ctx, record))

	record.Files = []domain.GeneratedFile{{Filename: "server.js", Content: "console.log(1);", Language: "javascript"}}
	record.Documentation = "# docs"
	record.InstallationScript = "#!/bin/sh"
	record.DownloadURL = "https://downloads/x.zip"
	record.CommitHash = "abc123"
	record.Metadata = domain.Metadata{TokensUsed: 42, GenerationTimeMs: 1200, ModelUsed: "gpt-4o-mini"}

	require.NoError(s.T(), s.repo.MarkCompleted(s.ctx, record))

	got, err := s.repo.GetByID(s.ctx, record.ID)
	require.NoError(s.T(), err)
	s.Equal(domain.StatusCompleted, got.Status)
	s.Len(got.Files, 1)
	s.Equal("server.js", got.Files[0].Filename)
	s.Equal("https://downloads/x.zip", got.DownloadURL)
	s.Equal(42, got.Metadata.TokensUsed)
}

func (s *RepositoryTestSuite) TestTerminalStateIsFinal() {
	record := s.newRecord(uuid.New())
	require.NoError(s.T(), s.repo.Create(s.ctx, record))
	require.NoError(s.T(), s.repo.MarkFailed(s.ctx, record.ID, "backend unavailable"))

	// Второй терминальный переход отклоняется.
	record.Files = []domain.GeneratedFile{{Filename: "a.js", Content: "x"}}
	err := s.repo.MarkCompleted(s.ctx, record)
	s.ErrorIs(err, domain.ErrRecordTerminal)

	err = s.repo.MarkFailed(s.ctx, record.ID, "another error")
	s.ErrorIs(err, domain.ErrRecordTerminal)

	got, err := s.repo.GetByID(s.ctx, record.ID)
	require.NoError(s.T(), err)
	s.Equal(domain.StatusFailed, got.Status)
	s.Equal("backend unavailable", got.Error)
}

func (s *RepositoryTestSuite) TestListByUserPagination() {
	userID := uuid.New()
	for i := 0; i < 15; i++ {
		record := s.newRecord(userID)
		record.CreatedAt = record.CreatedAt.Add(time.Duration(i) * time.Second)
		require.NoError(s.T(), s.repo.Create(s.ctx, record))
	}

	page1, total, err := s.repo.ListByUser(s.ctx, userID, 1, 10)
	require.NoError(s.T(), err)
	s.Equal(15, total)
	s.Len(page1, 10)

	page2, total, err := s.repo.ListByUser(s.ctx, userID, 2, 10)
	require.NoError(s.T(), err)
	s.Equal(15, total)
	s.Len(page2, 5)

	// Новые записи первыми; содержимое files в листинге не возвращается.
	s.True(page1[0].CreatedAt.After(page1[9].CreatedAt))
	for _, r := range page1 {
		s.Empty(r.Files)
	}
}

func TestRepositoryTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Skipf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(RepositoryTestSuite))
}
