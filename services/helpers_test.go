package services

import (
	"testing"
	"time"

	"lexcase_api_go/models"
	"lexcase_api_go/services/access"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name so pooled connections see the same schema
	dbName := "mem_" + uuid.New().String()
	db, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{NowFunc: models.Now})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role, email string) access.Actor {
	user := &models.User{Name: "Test " + role, Email: email, Password: "x", Role: role, IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return access.ActorFrom(user)
}

// connectUsers stores an accepted client -> professional connection
func connectUsers(t *testing.T, db *gorm.DB, client, professional access.Actor) *models.Connection {
	conn := &models.Connection{
		RequesterID:    client.ID,
		RecipientID:    professional.ID,
		ConnectionType: professional.Role,
		Status:         models.ConnectionStatusAccepted,
		IsActive:       true,
	}
	require.NoError(t, db.Create(conn).Error)
	return conn
}

type caseFixture struct {
	db        *gorm.DB
	admin     access.Actor
	client    access.Actor
	advocate  access.Actor
	paralegal access.Actor
	stranger  access.Actor
	caseRec   *models.Case
}

// newCaseFixture opens one case between a connected client and advocate with
// a paralegal assigned
func newCaseFixture(t *testing.T) *caseFixture {
	db := setupServiceTestDB(t)
	f := &caseFixture{
		db:        db,
		admin:     seedUser(t, db, models.RoleAdmin, "admin@test.com"),
		client:    seedUser(t, db, models.RoleClient, "client@test.com"),
		advocate:  seedUser(t, db, models.RoleAdvocate, "advocate@test.com"),
		paralegal: seedUser(t, db, models.RoleParalegal, "paralegal@test.com"),
		stranger:  seedUser(t, db, models.RoleClient, "stranger@test.com"),
	}
	connectUsers(t, db, f.client, f.advocate)

	c, err := NewCaseService(db).Create(t.Context(), f.advocate, CaseInput{
		Title:        "Contract dispute",
		Description:  "Supplier failed to deliver",
		Category:     models.CaseCategoryCivil,
		ClientID:     f.client.ID,
		ParalegalIDs: []string{f.paralegal.ID},
	})
	require.NoError(t, err)
	f.caseRec = c
	return f
}

func future(d time.Duration) time.Time {
	return time.Now().Add(d).Truncate(time.Second)
}
