package services

import (
	"testing"
	"time"

	"lexcase_api_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskInput(f *caseFixture) TaskInput {
	return TaskInput{
		Title:       "File motion",
		Description: "Prepare and file the motion",
		CaseID:      f.caseRec.ID,
		AssignedTo:  f.paralegal.ID,
		DueDate:     future(5 * 24 * time.Hour),
	}
}

func TestTaskService_Create(t *testing.T) {
	f := newCaseFixture(t)
	svc := NewTaskService(f.db)
	ctx := t.Context()

	tests := []struct {
		name   string
		mutate func(*TaskInput)
	}{
		{"Missing title", func(in *TaskInput) { in.Title = "  " }},
		{"Missing assignee", func(in *TaskInput) { in.AssignedTo = "" }},
		{"Bad priority", func(in *TaskInput) { in.Priority = "whenever" }},
		{"Bad task type", func(in *TaskInput) { in.TaskType = "juggling" }},
		{"Negative hours", func(in *TaskInput) { in.EstimatedHours = -1 }},
		{"Assignee is not a paralegal", func(in *TaskInput) { in.AssignedTo = f.client.ID }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := taskInput(f)
			tt.mutate(&in)
			_, err := svc.Create(ctx, f.advocate, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	t.Run("Only the case advocate assigns", func(t *testing.T) {
		_, err := svc.Create(ctx, f.paralegal, taskInput(f))
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Unknown case", func(t *testing.T) {
		in := taskInput(f)
		in.CaseID = "missing"
		_, err := svc.Create(ctx, f.advocate, in)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Defaults and notification", func(t *testing.T) {
		task, err := svc.Create(ctx, f.advocate, taskInput(f))
		require.NoError(t, err)
		assert.Equal(t, models.TaskTypeOther, task.TaskType)
		assert.Equal(t, f.advocate.ID, task.AssignedBy)

		var assigned int64
		f.db.Model(&models.Notification{}).
			Where("user_id = ? AND notification_type = ?", f.paralegal.ID, models.NotificationTaskAssigned).
			Count(&assigned)
		assert.EqualValues(t, 1, assigned)
	})

	t.Run("Due within a day books no reminder", func(t *testing.T) {
		in := taskInput(f)
		in.DueDate = future(6 * time.Hour)
		task, err := svc.Create(ctx, f.advocate, in)
		require.NoError(t, err)

		var n int64
		f.db.Model(&models.Reminder{}).Where("related_entity_id = ?", task.ID).Count(&n)
		assert.Zero(t, n)
	})
}

func TestTaskService_Access(t *testing.T) {
	f := newCaseFixture(t)
	svc := NewTaskService(f.db)
	ctx := t.Context()

	task, err := svc.Create(ctx, f.advocate, taskInput(f))
	require.NoError(t, err)

	_, err = svc.Get(ctx, f.paralegal, task.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, f.client, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.List(ctx, f.client, TaskFilter{})
	assert.ErrorIs(t, err, ErrForbidden, "clients do not have tasks")

	mine, total, err := svc.List(ctx, f.paralegal, TaskFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, mine, 1)

	_, err = svc.Update(ctx, f.paralegal, task.ID, TaskInput{Title: "Mine now"})
	assert.ErrorIs(t, err, ErrForbidden, "only the creator edits")

	updated, err := svc.Update(ctx, f.advocate, task.ID, TaskInput{Priority: models.TaskPriorityHigh, Tags: []string{"court"}})
	require.NoError(t, err)
	assert.Equal(t, models.TaskPriorityHigh, updated.Priority)
	assert.Equal(t, "File motion", updated.Title, "zero values leave fields unchanged")

	_, err = svc.Update(ctx, f.advocate, task.ID, TaskInput{DueDate: time.Now().Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTaskService_StatusAndComments(t *testing.T) {
	f := newCaseFixture(t)
	svc := NewTaskService(f.db)
	ctx := t.Context()

	task, err := svc.Create(ctx, f.advocate, taskInput(f))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, f.paralegal, task.ID, "done-ish")
	assert.ErrorIs(t, err, ErrValidation)

	held, err := svc.UpdateStatus(ctx, f.paralegal, task.ID, models.TaskStatusOnHold)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusOnHold, held.Status)

	comment, err := svc.AddComment(ctx, f.paralegal, task.ID, "<b>Waiting</b> on the clerk")
	require.NoError(t, err)
	assert.Equal(t, "Waiting on the clerk", comment.Comment)

	var told int64
	f.db.Model(&models.Notification{}).
		Where("user_id = ? AND notification_type = ?", f.advocate.ID, models.NotificationCustom).
		Count(&told)
	assert.EqualValues(t, 1, told, "the assigner hears about the comment")

	_, err = svc.AddComment(ctx, f.paralegal, task.ID, "<script></script>")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddComment(ctx, f.client, task.ID, "Hello")
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Get(ctx, f.advocate, task.ID)
	require.NoError(t, err)
	assert.Len(t, got.Comments, 1)
}

func TestTaskService_Attachments(t *testing.T) {
	f := newCaseFixture(t)
	svc := NewTaskService(f.db)
	ctx := t.Context()

	task, err := svc.Create(ctx, f.advocate, taskInput(f))
	require.NoError(t, err)

	doc := &models.Document{
		Title: "Motion", FileName: "motion.pdf", OriginalName: "motion.pdf", MimeType: "application/pdf",
		FileSize: 10, StorageKey: "cases/x/motion.pdf", CaseID: &f.caseRec.ID, UploadedBy: f.advocate.ID,
	}
	require.NoError(t, f.db.Create(doc).Error)

	_, err = svc.AddAttachment(ctx, f.paralegal, task.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.AddAttachment(ctx, f.paralegal, task.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{doc.ID}, got.Attachments)

	_, err = svc.AddAttachment(ctx, f.paralegal, task.ID, doc.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTaskService_OverdueAcrossZones(t *testing.T) {
	f := newCaseFixture(t)
	svc := NewTaskService(f.db)
	ctx := t.Context()

	// two hours ahead, written with a western offset so its wall clock reads
	// earlier than UTC now
	in := taskInput(f)
	in.DueDate = time.Now().Add(2 * time.Hour).In(time.FixedZone("UTC-5", -5*3600))
	task, err := svc.Create(ctx, f.advocate, in)
	require.NoError(t, err)

	overdue, err := svc.Overdue(ctx, f.advocate)
	require.NoError(t, err)
	assert.Empty(t, overdue)

	// a minute ago, written with an eastern offset
	task.DueDate = time.Now().Add(-time.Minute).In(time.FixedZone("UTC+5:30", 5*3600+1800))
	require.NoError(t, f.db.Save(task).Error)

	overdue, err = svc.Overdue(ctx, f.advocate)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, time.UTC, overdue[0].DueDate.Location())

	stats, err := svc.Stats(ctx, f.advocate)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Overdue)
}

func TestTaskService_DeleteAndStats(t *testing.T) {
	f := newCaseFixture(t)
	svc := NewTaskService(f.db)
	ctx := t.Context()

	task, err := svc.Create(ctx, f.advocate, taskInput(f))
	require.NoError(t, err)
	_, err = svc.Create(ctx, f.advocate, taskInput(f))
	require.NoError(t, err)

	// Backdate one so it counts as overdue
	require.NoError(t, f.db.Model(&models.Task{}).Where("id = ?", task.ID).
		Update("due_date", models.Now().Add(-time.Hour)).Error)

	overdue, err := svc.Overdue(ctx, f.paralegal)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, task.ID, overdue[0].ID)

	stats, err := svc.Stats(ctx, f.advocate)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Overdue)
	assert.EqualValues(t, 2, stats.ByStatus[models.TaskStatusPending])

	assert.ErrorIs(t, svc.Delete(ctx, f.paralegal, task.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, f.advocate, task.ID))

	_, err = svc.Get(ctx, f.advocate, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var live int64
	f.db.Model(&models.Reminder{}).
		Where("related_entity_id = ? AND status = ?", task.ID, models.ReminderStatusScheduled).
		Count(&live)
	assert.Zero(t, live, "pending reminders are cancelled with the task")
}
