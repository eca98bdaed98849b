package usagelog

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	teardown, db, err := database.GetTestDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test db: %v\n", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()

	_ = teardown(context.Background())
	os.Exit(code)
}

func TestGormLoggerRecord(t *testing.T) {
	l := NewGormLogger(testDB.DB)

	err := l.Record(context.Background(), model.AIUsageLog{
		UserID:         database.TestStudent1.ID,
		RequestType:    "job_recommendations",
		ResponseLength: 123,
	})
	require.NoError(t, err)

	var rows []model.AIUsageLog
	require.NoError(t, testDB.Where("user_id = ?", database.TestStudent1.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 123, rows[0].ResponseLength)
	assert.False(t, rows[0].CreatedAt.IsZero())
}

func TestGormLoggerHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewGormLogger(testDB.DB).Record(ctx, model.AIUsageLog{
		UserID:      database.TestStudent2.ID,
		RequestType: "general_question",
	})
	assert.Error(t, err)
}
