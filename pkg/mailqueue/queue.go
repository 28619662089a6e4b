package mailqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// maxRetries is the send-failure budget: a job whose retry count reaches
// this value becomes terminally failed and is never re-dequeued.
const maxRetries = 3

// Queue is the durable outbound email dispatcher. Enqueue always succeeds
// with a pending job; a background poll tick attempts delivery.
type Queue struct {
	jobs   grooming.EmailJobStore
	mailer grooming.MailSender
	log    *logrus.Logger

	now func() time.Time
}

// New creates a new email job queue
func New(jobs grooming.EmailJobStore, mailer grooming.MailSender, log *logrus.Logger) *Queue {
	return &Queue{
		jobs:   jobs,
		mailer: mailer,
		log:    log,
		now:    time.Now,
	}
}

// Name identifies the queue to the scheduler supervisor.
func (q *Queue) Name() string { return "email-queue" }

// Enqueue stores a new pending job and returns its id. A zero ScheduledAt
// means "send on the next tick".
func (q *Queue) Enqueue(ctx context.Context, job *grooming.EmailJob) (string, error) {
	if job.To == "" {
		return "", fmt.Errorf("job recipient cannot be empty")
	}
	if job.UserID == "" {
		return "", fmt.Errorf("job user_id cannot be empty")
	}

	job.ID = uuid.NewString()
	job.Status = grooming.EmailPending
	job.RetryCount = 0
	if job.ScheduledAt.IsZero() {
		job.ScheduledAt = q.now()
	}

	if err := q.jobs.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("failed to enqueue email job: %w", err)
	}
	return job.ID, nil
}

// Run is the dispatch tick: it selects every pending job whose scheduled
// time has passed and attempts delivery. Per-job failures are recorded on
// the job and never abort the batch.
func (q *Queue) Run(ctx context.Context) error {
	due, err := q.jobs.DueJobs(ctx, q.now())
	if err != nil {
		return fmt.Errorf("failed to list due email jobs: %w", err)
	}

	for _, job := range due {
		q.dispatch(ctx, job)
	}

	if len(due) > 0 {
		q.log.WithField("jobs", len(due)).Debug("email dispatch tick finished")
	}
	return nil
}

func (q *Queue) dispatch(ctx context.Context, job *grooming.EmailJob) {
	err := q.mailer.Send(ctx, job.UserID, job.To, job.Subject, job.HTMLBody)
	if err == nil {
		now := q.now()
		job.Status = grooming.EmailSent
		job.SentAt = &now
		job.LastError = ""
	} else if errors.Is(err, grooming.ErrNoCredential) {
		// No credential cannot self-heal; fail immediately instead of
		// burning the retry budget tick by tick.
		job.RetryCount++
		job.Status = grooming.EmailFailed
		job.LastError = "credential not found"
		q.log.WithFields(logrus.Fields{
			"job_id":  job.ID,
			"user_id": job.UserID,
		}).Warn("email job failed: credential not found")
	} else {
		job.RetryCount++
		job.LastError = err.Error()
		if job.RetryCount >= maxRetries {
			job.Status = grooming.EmailFailed
		}
		// Still pending jobs are naturally retried on the next eligible tick
		q.log.WithFields(logrus.Fields{
			"job_id":      job.ID,
			"retry_count": job.RetryCount,
			"status":      job.Status,
		}).WithError(err).Warn("email send failed")
	}

	if err := q.jobs.UpdateJob(ctx, job); err != nil {
		q.log.WithField("job_id", job.ID).WithError(err).Error("failed to persist email job state")
	}
}
