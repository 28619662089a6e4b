package qualify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	store "github.com/MattHurst33/replit-calander-sub000/internal/stores/grooming"
	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/MattHurst33/replit-calander-sub000/pkg/qualify"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// fakeCalendar records slot-freeing calls and optionally fails them
type fakeCalendar struct {
	freed   []string
	failure error
}

func (f *fakeCalendar) FetchEvents(_ context.Context, _ string, _, _ time.Time) ([]grooming.Event, error) {
	return nil, nil
}

func (f *fakeCalendar) MarkEventFree(_ context.Context, _, externalID string) error {
	if f.failure != nil {
		return f.failure
	}
	f.freed = append(f.freed, externalID)
	return nil
}

func (f *fakeCalendar) CancelEvent(_ context.Context, _, _ string) error { return nil }

// fakeQueue records enqueued jobs
type fakeQueue struct {
	jobs []*grooming.EmailJob
}

func (f *fakeQueue) Enqueue(_ context.Context, job *grooming.EmailJob) (string, error) {
	f.jobs = append(f.jobs, job)
	return "job-1", nil
}

func testMeeting(id string) *grooming.Meeting {
	return &grooming.Meeting{
		ID:            id,
		UserID:        "user-1",
		ExternalID:    "gcal_abc",
		Title:         "Intro call",
		StartTime:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
		AttendeeEmail: "prospect@acme.test",
		AttendeeName:  "Pat",
		Company:       "Acme",
		Revenue:       "$2,000,000",
		CompanySize:   "120",
		Industry:      "software",
		Budget:        "50000",
		Status:        grooming.StatusPending,
	}
}

func setup(t *testing.T) (*store.InMemoryStore, *fakeCalendar, *fakeQueue, *qualify.Engine) {
	t.Helper()

	s := store.NewInMemoryStore()
	calendar := &fakeCalendar{}
	queue := &fakeQueue{}
	log := logrus.New()

	return s, calendar, queue, qualify.NewEngine(s, s, s, calendar, queue, log)
}

func TestQualifyAllRulesPass(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, _, queue, engine := setup(t)
	assert.Nil(s.SaveMeeting(ctx, testMeeting("m1")))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r1", UserID: "user-1",
		Field: grooming.FieldRevenue, Operator: grooming.OpGreaterOrEqual, Value: "1000000",
		Active: true,
	}))

	status, reason, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.StatusQualified, status)
	assert.Equal("all qualification rules passed", reason)

	// Confirmation email enqueued for the qualified meeting
	assert.Len(queue.jobs, 1)
	assert.Equal(grooming.EmailConfirmation, queue.jobs[0].Kind)

	stored, err := s.GetMeeting(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.StatusQualified, stored.Status)
}

func TestQualifyIsDeterministic(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, _, _, engine := setup(t)
	meeting := testMeeting("m1")
	meeting.Revenue = "500000"
	meeting.Industry = "gambling"
	assert.Nil(s.SaveMeeting(ctx, meeting))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r1", UserID: "user-1", Priority: 1,
		Field: grooming.FieldRevenue, Operator: grooming.OpGreaterOrEqual, Value: "1000000",
		Active: true,
	}))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r2", UserID: "user-1", Priority: 2,
		Field: grooming.FieldIndustry, Operator: grooming.OpNotContains, Value: "gambling",
		Active: true,
	}))

	status1, reason1, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)
	status2, reason2, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)

	assert.Equal(grooming.StatusDisqualified, status1)
	assert.Equal(status1, status2)
	assert.Equal(reason1, reason2)
	assert.Contains(reason1, "; ") // both failures joined
}

func TestQualifyMissingFieldFailsRule(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, _, _, engine := setup(t)
	meeting := testMeeting("m1")
	meeting.Budget = ""
	assert.Nil(s.SaveMeeting(ctx, meeting))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r1", UserID: "user-1",
		Field: grooming.FieldBudget, Operator: grooming.OpGreaterOrEqual, Value: "10000",
		Active: true,
	}))

	status, reason, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.StatusDisqualified, status)
	assert.Equal("missing budget data", reason)
}

func TestQualifyInactiveRulesIgnored(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, _, _, engine := setup(t)
	assert.Nil(s.SaveMeeting(ctx, testMeeting("m1")))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r1", UserID: "user-1",
		Field: grooming.FieldRevenue, Operator: grooming.OpGreaterOrEqual, Value: "999999999",
		Active: false,
	}))

	status, _, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.StatusQualified, status)
}

func TestQualifyNeedsReviewOnIncompleteData(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, _, queue, engine := setup(t)
	meeting := testMeeting("m1")
	meeting.Revenue = ""
	meeting.Company = ""
	assert.Nil(s.SaveMeeting(ctx, meeting))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r1", UserID: "user-1",
		Field: grooming.FieldIndustry, Operator: grooming.OpContains, Value: "software",
		Active: true,
	}))

	status, reason, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.StatusNeedsReview, status)
	assert.Contains(reason, "missing revenue, company")

	// No confirmation email for a needs_review verdict
	assert.Empty(queue.jobs)
}

func TestQualifyDisqualifiedDominatesNeedsReview(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, _, _, engine := setup(t)
	meeting := testMeeting("m1")
	meeting.Revenue = ""
	meeting.Company = ""
	meeting.Industry = "gambling"
	assert.Nil(s.SaveMeeting(ctx, meeting))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r1", UserID: "user-1",
		Field: grooming.FieldIndustry, Operator: grooming.OpNotContains, Value: "gambling",
		Active: true,
	}))

	status, _, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.StatusDisqualified, status)
}

func TestQualifyFreesSlotOnDisqualification(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, calendar, queue, engine := setup(t)
	meeting := testMeeting("m1")
	meeting.Revenue = "1000"
	assert.Nil(s.SaveMeeting(ctx, meeting))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r1", UserID: "user-1",
		Field: grooming.FieldRevenue, Operator: grooming.OpGreaterOrEqual, Value: "1000000",
		Active: true,
	}))

	status, _, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.StatusDisqualified, status)
	assert.Equal([]string{"gcal_abc"}, calendar.freed)

	// Deletion notice enqueued and the meeting marked calendar-deleted
	assert.Len(queue.jobs, 1)
	assert.Equal(grooming.EmailCalendarDeletion, queue.jobs[0].Kind)

	stored, err := s.GetMeeting(ctx, "m1")
	assert.Nil(err)
	assert.True(stored.CalendarDeleted)
}

func TestQualifyRerunDoesNotDuplicateConfirmation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, _, queue, engine := setup(t)
	assert.Nil(s.SaveMeeting(ctx, testMeeting("m1")))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r1", UserID: "user-1",
		Field: grooming.FieldRevenue, Operator: grooming.OpGreaterOrEqual, Value: "1000000",
		Active: true,
	}))

	status1, _, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)
	status2, _, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)

	assert.Equal(grooming.StatusQualified, status1)
	assert.Equal(status1, status2)

	// Only the pending->qualified transition sends; the re-run does not
	assert.Len(queue.jobs, 1)
}

func TestQualifyRerunDoesNotRefreeSlot(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, calendar, queue, engine := setup(t)
	meeting := testMeeting("m1")
	meeting.Revenue = "1000"
	assert.Nil(s.SaveMeeting(ctx, meeting))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r1", UserID: "user-1",
		Field: grooming.FieldRevenue, Operator: grooming.OpGreaterOrEqual, Value: "1000000",
		Active: true,
	}))

	_, _, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)
	_, _, err = engine.Qualify(ctx, "m1")
	assert.Nil(err)

	assert.Equal([]string{"gcal_abc"}, calendar.freed)
	assert.Len(queue.jobs, 1) // one deletion notice
}

func TestQualifyNeverFreesCalendlySlot(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, calendar, _, engine := setup(t)
	meeting := testMeeting("m1")
	meeting.ExternalID = "calendly_xyz"
	meeting.Revenue = "1000"
	assert.Nil(s.SaveMeeting(ctx, meeting))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r1", UserID: "user-1",
		Field: grooming.FieldRevenue, Operator: grooming.OpGreaterOrEqual, Value: "1000000",
		Active: true,
	}))

	status, _, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.StatusDisqualified, status)
	assert.Empty(calendar.freed)
}

func TestQualifySurvivesCalendarFailure(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, calendar, _, engine := setup(t)
	calendar.failure = errors.New("calendar unavailable")

	meeting := testMeeting("m1")
	meeting.Revenue = "1000"
	assert.Nil(s.SaveMeeting(ctx, meeting))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r1", UserID: "user-1",
		Field: grooming.FieldRevenue, Operator: grooming.OpGreaterOrEqual, Value: "1000000",
		Active: true,
	}))

	// Side-effect failure is swallowed; the verdict still persists
	status, _, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.StatusDisqualified, status)

	stored, err := s.GetMeeting(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.StatusDisqualified, stored.Status)
	assert.False(stored.CalendarDeleted)
}

func TestQualifyUnknownMeeting(t *testing.T) {
	assert := assert.New(t)

	_, _, _, engine := setup(t)
	_, _, err := engine.Qualify(context.Background(), "nope")
	assert.ErrorIs(err, grooming.ErrMeetingNotFound)
}

func TestQualifyNumericCoercion(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, _, _, engine := setup(t)
	meeting := testMeeting("m1")
	meeting.Revenue = "$1,500,000"
	assert.Nil(s.SaveMeeting(ctx, meeting))
	assert.Nil(s.SaveRule(ctx, &grooming.QualificationRule{
		ID: "r1", UserID: "user-1",
		Field: grooming.FieldRevenue, Operator: grooming.OpGreaterOrEqual, Value: "1000000",
		Active: true,
	}))

	status, _, err := engine.Qualify(ctx, "m1")
	assert.Nil(err)
	assert.Equal(grooming.StatusQualified, status)
}

func TestValidateRule(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(qualify.ValidateRule(&grooming.QualificationRule{
		Field: grooming.FieldRevenue, Operator: grooming.OpGreaterOrEqual, Value: "100",
	}))

	// contains on a numeric field
	assert.NotNil(qualify.ValidateRule(&grooming.QualificationRule{
		Field: grooming.FieldRevenue, Operator: grooming.OpContains, Value: "100",
	}))

	// gte on a text field
	assert.NotNil(qualify.ValidateRule(&grooming.QualificationRule{
		Field: grooming.FieldCompany, Operator: grooming.OpGreaterOrEqual, Value: "Acme",
	}))

	// non-numeric value for a numeric field
	assert.NotNil(qualify.ValidateRule(&grooming.QualificationRule{
		Field: grooming.FieldBudget, Operator: grooming.OpLessOrEqual, Value: "lots",
	}))

	// unknown field
	assert.NotNil(qualify.ValidateRule(&grooming.QualificationRule{
		Field: "mood", Operator: grooming.OpEqual, Value: "good",
	}))
}
