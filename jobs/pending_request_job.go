package jobs

import (
	"context"
	"time"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/notifications"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// PendingConnections is what the reminder needs from the connection service.
type PendingConnections interface {
	PendingCreatedBetween(ctx context.Context, from, to time.Time) ([]models.Connection, error)
	Parties(ctx context.Context, conn models.Connection) (services.Parties, error)
}

// PendingRequestReminder emails tutors about requests left unanswered for
// longer than After. Each run covers the window of requests that crossed
// that age since the previous run, so every request is reminded once.
type PendingRequestReminder struct {
	Connections PendingConnections
	Mailer      notifications.Mailer
	After       time.Duration
	Interval    time.Duration
	now         func() time.Time
}

func (j *PendingRequestReminder) Run() {
	now := time.Now
	if j.now != nil {
		now = j.now
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	upper := now().Add(-j.After)
	lower := upper.Add(-j.Interval)

	log.Debug().Time("from", lower).Time("to", upper).Msg("Running job: PendingRequestReminder...")
	pending, err := j.Connections.PendingCreatedBetween(ctx, lower, upper)
	if err != nil {
		log.Error().Err(err).Msg("Error checking for pending connection requests")
		return
	}

	sent := 0
	for _, conn := range pending {
		p, err := j.Connections.Parties(ctx, conn)
		if err != nil {
			log.Warn().Err(err).Str("connection_id", conn.ID).Msg("skipping reminder")
			continue
		}
		if err := notifications.SendPendingReminder(ctx, j.Mailer, p, conn); err != nil {
			log.Error().Err(err).Str("connection_id", conn.ID).Msg("🔥 Failed to send pending reminder")
			continue
		}
		sent++
	}
	if sent > 0 {
		log.Info().Int("sent", sent).Msg("✅ Pending request reminders sent")
	}
}

// Schedule registers the reminder on c. The window length is derived from
// the schedule so consecutive runs neither overlap nor leave gaps.
func Schedule(c *cron.Cron, schedule string, j *PendingRequestReminder) error {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return errors.Wrapf(err, "parse reminder schedule %q", schedule)
	}
	if j.Interval == 0 {
		j.Interval = scheduleInterval(sched, time.Now())
	}
	if _, err := c.AddJob(schedule, j); err != nil {
		return errors.Wrap(err, "add reminder job")
	}
	log.Info().Str("schedule", schedule).Dur("window", j.Interval).Msg("✅ Cron job for pending requests scheduled successfully.")
	return nil
}

func scheduleInterval(sched cron.Schedule, from time.Time) time.Duration {
	first := sched.Next(from)
	return sched.Next(first).Sub(first)
}
