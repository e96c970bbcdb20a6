package services

import (
	"testing"
	"time"

	"lexcase_api_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimelineService_Create(t *testing.T) {
	f := newCaseFixture(t)
	svc := NewTimelineService(f.db)
	ctx := t.Context()

	valid := TimelineInput{EventType: models.EventDocumentSubmitted, Title: "Filed plaint", EventDate: future(time.Hour)}

	tests := []struct {
		name   string
		mutate func(*TimelineInput)
	}{
		{"Missing type", func(in *TimelineInput) { in.EventType = "" }},
		{"Unknown type", func(in *TimelineInput) { in.EventType = "picnic" }},
		{"Missing title", func(in *TimelineInput) { in.Title = " " }},
		{"Missing date", func(in *TimelineInput) { in.EventDate = time.Time{} }},
		{"Bad time", func(in *TimelineInput) { in.EventTime = "25:00" }},
		{"Bad priority", func(in *TimelineInput) { in.Priority = "meh" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.Create(ctx, f.advocate, f.caseRec.ID, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	t.Run("Client cannot manage the timeline", func(t *testing.T) {
		_, err := svc.Create(ctx, f.client, f.caseRec.ID, valid)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Milestone", func(t *testing.T) {
		in := valid
		in.IsMilestone = true
		in.MilestoneType = "filing"
		e, err := svc.Create(ctx, f.advocate, f.caseRec.ID, in)
		require.NoError(t, err)
		assert.Equal(t, models.PriorityMedium, e.Priority)
		assert.Equal(t, models.TimelineStatusScheduled, e.Status)
		assert.NotNil(t, e.Participants)

		var marked int64
		f.db.Model(&models.Activity{}).
			Where("case_id = ? AND activity_type = ?", f.caseRec.ID, models.ActivityMilestoneMarked).
			Count(&marked)
		assert.EqualValues(t, 1, marked)

		milestones, err := svc.Milestones(ctx, f.client, f.caseRec.ID)
		require.NoError(t, err)
		assert.Len(t, milestones, 1)
	})
}

func TestTimelineService_Hearings(t *testing.T) {
	f := newCaseFixture(t)
	svc := NewTimelineService(f.db)
	ctx := t.Context()

	first, err := svc.AddHearing(ctx, f.advocate, f.caseRec.ID, TimelineInput{EventDate: future(48 * time.Hour), DisableReminder: true})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, first.Priority)
	require.NotNil(t, first.HearingDetails)
	assert.Equal(t, "regular_hearing", first.HearingDetails.HearingType)

	var reminders int64
	f.db.Model(&models.Reminder{}).Where("related_entity_id = ?", f.caseRec.ID).Count(&reminders)
	assert.Zero(t, reminders, "reminders can be turned off")

	var told int64
	f.db.Model(&models.Notification{}).
		Where("notification_type = ? AND user_id IN ?", models.NotificationHearingScheduled, []string{f.client.ID, f.paralegal.ID}).
		Count(&told)
	assert.EqualValues(t, 2, told, "every other party hears about it")

	later, err := svc.AddHearing(ctx, f.advocate, f.caseRec.ID, TimelineInput{Title: "Final arguments", EventDate: future(96 * time.Hour)})
	require.NoError(t, err)

	next, err := svc.NextHearing(ctx, f.paralegal, f.caseRec.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, first.ID, next.ID)

	_, err = svc.NextHearing(ctx, f.stranger, f.caseRec.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	nextDate := future(30 * 24 * time.Hour)
	done, err := svc.Complete(ctx, f.advocate, first.ID, HearingResult{Outcome: "adjourned", ActualDuration: 45, NextHearingDate: &nextDate})
	require.NoError(t, err)
	assert.Equal(t, models.TimelineStatusCompleted, done.Status)
	assert.True(t, done.HearingDetails.IsCompleted)
	assert.Equal(t, 45, done.HearingDetails.ActualDuration)

	c, err := NewCaseService(f.db).Get(ctx, f.admin, f.caseRec.ID)
	require.NoError(t, err)
	require.NotNil(t, c.NextHearingDate)
	assert.True(t, c.NextHearingDate.Equal(nextDate), "completion moves the case's next hearing")

	scheduled, err := svc.Hearings(ctx, f.client, f.caseRec.ID, models.TimelineStatusScheduled)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, later.ID, scheduled[0].ID)

	cancelled, err := svc.Cancel(ctx, f.advocate, later.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TimelineStatusCancelled, cancelled.Status)

	next, err = svc.NextHearing(ctx, f.advocate, f.caseRec.ID)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestTimelineService_UpdateAndDelete(t *testing.T) {
	f := newCaseFixture(t)
	svc := NewTimelineService(f.db)
	ctx := t.Context()

	e, err := svc.Create(ctx, f.advocate, f.caseRec.ID, TimelineInput{
		EventType: models.EventNote, Title: "Call with clerk", EventDate: future(time.Hour), Location: "Phone",
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, f.paralegal, e.ID, TimelineInput{Title: "Renamed"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(ctx, f.advocate, e.ID, TimelineInput{EventTime: "7pm"})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.Update(ctx, f.advocate, e.ID, TimelineInput{Title: "Call with registrar", EventTime: "09:15"})
	require.NoError(t, err)
	assert.Equal(t, "Call with registrar", updated.Title)
	assert.Equal(t, "Phone", updated.Location)
	assert.Equal(t, f.advocate.ID, updated.UpdatedBy)

	require.NoError(t, svc.Delete(ctx, f.advocate, e.ID))
	_, err = svc.Get(ctx, f.advocate, e.ID)
	assert.ErrorIs(t, err, ErrNotFound, "hidden events are gone from reads")

	var row models.TimelineEvent
	require.NoError(t, f.db.First(&row, "id = ?", e.ID).Error)
	assert.False(t, row.IsVisible, "the row itself is kept")

	events, err := svc.ListForCase(ctx, f.client, f.caseRec.ID, "")
	require.NoError(t, err)
	for _, ev := range events {
		assert.NotEqual(t, e.ID, ev.ID)
	}

	upcoming, err := svc.Upcoming(ctx, f.advocate, f.caseRec.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, upcoming)
}
