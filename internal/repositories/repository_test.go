package repositories

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/jobpost-ats/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestApplicationRepository_SaveScreeningResult(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "unscored row is updated", affected: 1},
		{name: "already scored row is left alone", affected: 0, wantErr: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewApplicationRepository(db)

			mock.ExpectExec(`UPDATE "applications" SET .* WHERE id = \$\d+ AND ai_score IS NULL`).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.SaveScreeningResult(context.Background(), uuid.New(), ScreeningUpdate{
				Score:       82,
				Summary:     "Strong match.",
				RawResponse: json.RawMessage(`{"score":82,"summary":"Strong match."}`),
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestApplicationRepository_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)
		id := uuid.New()
		jobID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "job_id", "full_name", "email", "resume_url", "status"}).
			AddRow(id.String(), jobID.String(), "Ada Lovelace", "ada@example.com", "https://cdn.test/applications/resumes/a.pdf", "new")
		mock.ExpectQuery(`SELECT \* FROM "applications" WHERE id = \$1`).WillReturnRows(rows)

		app, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, app.ID)
		assert.Equal(t, jobID, app.JobID)
		assert.True(t, app.ResumeReady())
		assert.False(t, app.Screened())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "applications" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestApplicationRepository_UpdateStatusMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec(`UPDATE "applications" SET .*"status"=.* WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), uuid.New(), models.ApplicationStatusHired)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_FindUnscreened(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "job_id", "resume_url"}).
		AddRow(uuid.NewString(), uuid.NewString(), "resumes/a.pdf").
		AddRow(uuid.NewString(), uuid.NewString(), "resumes/b.pdf")
	mock.ExpectQuery(`SELECT \* FROM "applications" WHERE .*ai_score IS NULL AND ai_screening_error IS NULL.* AND .*resume_url <> .* AND applied_at < \$2 ORDER BY applied_at ASC`).
		WillReturnRows(rows)

	apps, err := repo.FindUnscreened(context.Background(), time.Now().Add(-5*time.Minute), 10)
	require.NoError(t, err)
	assert.Len(t, apps, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_FindByIDsEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	apps, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, apps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_FindActiveBySlug(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "jobs" WHERE slug = \$1 AND status = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug", "status"}).
			AddRow(uuid.NewString(), "Go Engineer", "go-engineer-x1y2z3", "active"))

	job, err := repo.FindActiveBySlug(context.Background(), "go-engineer-x1y2z3")
	require.NoError(t, err)
	assert.Equal(t, "Go Engineer", job.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_UpdateStatusScopedToOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec(`UPDATE "jobs" SET .* WHERE id = \$\d+ AND user_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), uuid.New(), uuid.New(), models.JobStatusInactive)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_DeleteRemovesDependents(t *testing.T) {
	jobID, userID, appID := uuid.New(), uuid.New(), uuid.New()

	t.Run("owned job", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewJobRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "applications" WHERE job_id = \$1`).
			WithArgs(jobID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "job_id", "resume_url"}).
				AddRow(appID, jobID, "https://cdn.test/storage/applications/resumes/a.pdf"))
		mock.ExpectExec(`DELETE FROM "interview_schedules" WHERE job_id = \$1`).
			WithArgs(jobID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM "applications" WHERE job_id = \$1`).
			WithArgs(jobID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "jobs" WHERE id = \$1 AND user_id = \$2`).
			WithArgs(jobID, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		removed, err := repo.Delete(context.Background(), jobID, userID)
		require.NoError(t, err)
		require.Len(t, removed, 1)
		assert.Equal(t, appID, removed[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("someone else's job rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewJobRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "applications" WHERE job_id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "job_id"}).AddRow(appID, jobID))
		mock.ExpectExec(`DELETE FROM "interview_schedules" WHERE job_id = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "applications" WHERE job_id = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "jobs" WHERE id = \$1 AND user_id = \$2`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		removed, err := repo.Delete(context.Background(), jobID, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, removed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobRepository_CountByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total, COUNT\(\*\) FILTER \(WHERE status = \$1\) AS active FROM "jobs" WHERE user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "active"}).AddRow(3, 2))

	total, active, err := repo.CountByOwner(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewRepository_CountScheduledByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInterviewRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "interview_schedules" WHERE user_id = \$1 AND status = \$2 AND interview_date >= \$3`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountScheduledByOwner(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
