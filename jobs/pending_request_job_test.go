package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/anjiri1684/tutor_connect/store"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu sync.Mutex
	to []string
}

func (f *fakeMailer) Send(_ context.Context, _, toEmail, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, toEmail)
	return nil
}

func TestPendingRequestReminder_Window(t *testing.T) {
	ctx := context.Background()
	records := services.NewRecords(store.NewMemoryBackend())
	directory := services.NewDirectoryService(records)
	connections := services.NewConnectionService(records, services.NewBroker())

	tutor, err := directory.CreateUser(ctx, services.RegisterInput{
		FirstName: "Carlos", LastName: "Rodríguez", Email: "carlos@unet.edu.ve", Password: "tutor123",
		Profile: models.TutorProfile{TutorType: models.TutorTypeUnet},
	})
	require.NoError(t, err)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	ages := []time.Duration{
		24*time.Hour + 2*time.Minute,  // in window
		24*time.Hour - time.Minute,    // too recent
		24*time.Hour + 10*time.Minute, // already reminded by an earlier run
	}
	var conns []models.Connection
	for i, age := range ages {
		student, err := directory.CreateUser(ctx, services.RegisterInput{
			FirstName: "S", LastName: "Tudent", Email: string(rune('a'+i)) + "@unet.edu.ve", Password: "pw",
			Profile: models.StudentProfile{Career: "Informática"},
		})
		require.NoError(t, err)
		conn := models.Connection{
			ID: student.ID + "-conn", StudentID: student.ID, TutorID: tutor.ID,
			Status: models.ConnectionPending, CreatedAt: now.Add(-age),
		}
		require.NoError(t, records.Connections.Append(ctx, conn))
		conns = append(conns, conn)
	}
	accepted := conns[0]
	accepted.ID, accepted.Status = "answered", models.ConnectionAccepted
	require.NoError(t, records.Connections.Append(ctx, accepted))

	mailer := &fakeMailer{}
	job := &PendingRequestReminder{
		Connections: connections,
		Mailer:      mailer,
		After:       24 * time.Hour,
		Interval:    5 * time.Minute,
		now:         func() time.Time { return now },
	}
	job.Run()

	assert.Equal(t, []string{"carlos@unet.edu.ve"}, mailer.to)
}

func TestSchedule(t *testing.T) {
	c := cron.New()
	job := &PendingRequestReminder{After: time.Hour}

	require.NoError(t, Schedule(c, "*/5 * * * *", job))
	assert.Equal(t, 5*time.Minute, job.Interval)
	assert.Len(t, c.Entries(), 1)

	assert.Error(t, Schedule(c, "not a schedule", &PendingRequestReminder{}))
}
