package database

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

var testDB *DBinstanceStruct

func TestMain(m *testing.M) {
	teardown, db, err := GetTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}
	testDB = db

	code := m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("could not teardown postgres container")
	}
	os.Exit(code)
}

func TestHealth(t *testing.T) {
	stats := testDB.Health()

	assert.Equal(t, "up", stats["status"])
	_, hasErr := stats["error"]
	assert.False(t, hasErr)
	assert.Equal(t, "It's healthy", stats["message"])
}

func TestSeededData(t *testing.T) {
	var count int64
	require.NoError(t, testDB.Model(&model.Job{}).Where("status = ?", model.JobStatusOpen).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	var company model.Company
	require.NoError(t, testDB.Preload("Jobs").First(&company, "owner_id = ?", TestHRUser1.ID).Error)
	assert.True(t, company.Verified)
	assert.Len(t, company.Jobs, 2)
}

func TestUniqueApplicationIndex(t *testing.T) {
	app := model.Application{JobID: TestJobFullTime.ID, StudentID: TestStudent2.ID, Status: model.ApplicationApplied}
	require.NoError(t, testDB.Create(&app).Error)
	t.Cleanup(func() { testDB.Delete(&app) })

	dup := model.Application{JobID: TestJobFullTime.ID, StudentID: TestStudent2.ID, Status: model.ApplicationApplied}
	err := testDB.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.True(t, apperr.Is(TranslateError("apply", "", err), apperr.CodeConflict))
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, TranslateError("op", "missing", nil))
	assert.True(t, apperr.Is(TranslateError("op", "missing", gorm.ErrRecordNotFound), apperr.CodeNotFound))
	assert.True(t, apperr.Is(TranslateError("op", "", &pgconn.PgError{Code: "23503"}), apperr.CodeValidation))
	assert.True(t, apperr.Is(TranslateError("op", "", errors.New("boom")), apperr.CodePersistence))
}

func TestPortfolioHookRejectsInvalidItems(t *testing.T) {
	p := model.Portfolio{
		StudentID: TestStudent1.ID,
		Skills:    []model.Skill{{Name: ""}},
		Status:    model.PortfolioDraft,
	}
	err := testDB.Create(&p).Error
	assert.ErrorIs(t, err, model.ErrInvalidPortfolio)
}

func TestCloseOwnInstance(t *testing.T) {
	db, err := NewDBInstance(testDB.Config)
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}
