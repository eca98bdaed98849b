package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	m "github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported seeded records
var (
	TestAdminUser m.Profile
	TestApprover  m.Profile
	TestStudent1  m.Profile
	TestStudent2  m.Profile
	TestHRUser1   m.Profile
	TestHRUser2   m.Profile

	// TestCompany1 is verified, TestCompany2 is not
	TestCompany1 m.Company
	TestCompany2 m.Company

	TestJobIntern       m.Job
	TestJobPartTime     m.Job
	TestJobFullTime     m.Job
	TestJobClosedIntern m.Job

	TestSeedPassword   = "SeedPass123!"
	TestWhitelistEmail = "boss@example.com"
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {
	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		DBName:    dbName,
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts principals, companies, jobs and an allow-listed admin email.
func seedTestData(db *DBinstanceStruct) error {
	hashedPwd, err := utilities.HashPassword(TestSeedPassword)
	if err != nil {
		return err
	}

	userSpecs := []struct {
		target   *m.Profile
		username string
		email    string
		name     string
		role     m.Role
	}{
		{&TestAdminUser, "admin_user", "admin@example.com", "Admin", m.RoleAdmin},
		{&TestApprover, "approver_user", "approver@example.com", "Dr. Wirat", m.RoleFacultyApprover},
		{&TestStudent1, "student_1", "student1@example.com", "Alice Nguyen", m.RoleStudent},
		{&TestStudent2, "student_2", "student2@example.com", "Bob Somsak", m.RoleStudent},
		{&TestHRUser1, "hr_user_1", "hr1@example.com", "Pim HR", m.RoleCompanyHR},
		{&TestHRUser2, "hr_user_2", "hr2@example.com", "Tao HR", m.RoleCompanyHR},
	}

	for _, s := range userSpecs {
		*s.target = m.Profile{
			ID:                  uuid.New(),
			Username:            s.username,
			Email:               ptr(s.email),
			Password:            hashedPwd,
			Role:                s.role,
			VerifiedStudent:     s.role == m.RoleStudent,
			EditableProfileInfo: m.EditableProfileInfo{DisplayName: s.name},
		}
		if err := db.Create(s.target).Error; err != nil {
			return err
		}
	}

	verifiedAt := time.Now()
	TestCompany1 = m.Company{
		OwnerID:    TestHRUser1.ID,
		Name:       "TechNova",
		Domain:     "technova.example.com",
		Verified:   true,
		VerifiedAt: &verifiedAt,
	}
	TestCompany2 = m.Company{
		OwnerID: TestHRUser2.ID,
		Name:    "DataForge",
		Domain:  "dataforge.example.com",
	}
	for _, c := range []*m.Company{&TestCompany1, &TestCompany2} {
		if err := db.Create(c).Error; err != nil {
			return err
		}
	}

	deadline := time.Now().AddDate(0, 1, 0)
	jobSpecs := []struct {
		target  *m.Job
		company m.Company
		info    m.EditableJobInfo
		status  m.JobStatus
	}{
		{&TestJobIntern, TestCompany1, m.EditableJobInfo{
			Title:        "Backend Engineer Intern",
			Description:  "Work on Go services and database layers.",
			JobType:      m.JobTypeInternship,
			Location:     "Bangkok (Hybrid)",
			Compensation: "15000 THB",
			Requirements: pq.StringArray{"Go basics", "SQL familiarity"},
			Deadline:     &deadline,
		}, m.JobStatusOpen},
		{&TestJobPartTime, TestCompany1, m.EditableJobInfo{
			Title:        "Frontend Developer",
			Description:  "Build the component library in React.",
			JobType:      m.JobTypePartTime,
			Location:     "Remote",
			Compensation: "300 THB/hour",
			Requirements: pq.StringArray{"TypeScript"},
		}, m.JobStatusOpen},
		{&TestJobFullTime, TestCompany2, m.EditableJobInfo{
			Title:        "Data Analyst",
			Description:  "Dashboards and data cleansing.",
			JobType:      m.JobTypeFullTime,
			Location:     "Chiang Mai (On-site)",
			Compensation: "35000 THB",
			Requirements: pq.StringArray{"SQL", "Statistics"},
		}, m.JobStatusOpen},
		{&TestJobClosedIntern, TestCompany2, m.EditableJobInfo{
			Title:        "Data Intern",
			Description:  "Closed internship.",
			JobType:      m.JobTypeInternship,
			Location:     "Chiang Mai",
			Requirements: pq.StringArray{},
		}, m.JobStatusClosed},
	}
	for _, s := range jobSpecs {
		*s.target = m.Job{
			CompanyID:       s.company.ID,
			EditableJobInfo: s.info,
			Status:          s.status,
			Source:          m.JobSourceDirect,
		}
		if err := db.Create(s.target).Error; err != nil {
			return err
		}
		s.target.Company = s.company
	}

	return db.Create([]m.AdminWhitelist{
		{Email: TestWhitelistEmail, Active: true},
		{Email: *TestAdminUser.Email, Active: true},
	}).Error
}

func ptr[T any](v T) *T { return &v }
