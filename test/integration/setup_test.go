package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/model"
	"notekeeper-be/internal/repository/unitofwork"
	"notekeeper-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupDB connects to DB_CONNECTION_STRING and migrates the schema. Tests are
// skipped when it is not set.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, database.PoolConfig{MaxOpenConns: 20, MaxIdleConns: 5})
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db, nil))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// createUser inserts a throwaway user; its rows cascade away on cleanup.
func createUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	user := &entity.User{
		Id:           uuid.New(),
		Email:        "it-" + uuid.NewString() + "@example.com",
		Username:     "integration",
		PasswordHash: "x",
	}
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	require.NoError(t, uow.UserRepository().Create(ctx, user))

	t.Cleanup(func() {
		db.Exec("DELETE FROM users WHERE id = ?", user.Id)
	})
	return user.Id
}
