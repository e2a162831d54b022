package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classroom/internal/config"
	"classroom/internal/model"
)

func memoryConfig() config.App {
	cfg := config.FromEnv()
	cfg.StoreBackend = config.BackendMemory
	cfg.CacheBackend = config.BackendMemory
	cfg.QueueBackend = config.BackendMemory
	return cfg
}

func TestNew_Memory(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Redis)
	ctx := context.Background()
	require.NoError(t, a.Service.Ping(ctx))

	_, err = a.Service.CreateStudent(ctx, model.Student{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		GradeLevel: model.GradeLevel10th, StudentID: "S-1",
	})
	require.NoError(t, err)

	sum, err := a.Service.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalStudents)
}

func TestNew_UnknownStore(t *testing.T) {
	cfg := memoryConfig()
	cfg.StoreBackend = "sqlite"
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, `unknown store backend "sqlite"`)
}
