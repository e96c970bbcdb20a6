package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_UpdateProgress(t *testing.T) {
	task := &Task{Status: TaskStatusPending}

	task.UpdateProgress(0)
	assert.Equal(t, TaskStatusPending, task.Status, "zero progress does not start work")
	assert.Nil(t, task.StartDate)

	task.UpdateProgress(30)
	assert.Equal(t, TaskStatusInProgress, task.Status)
	require.NotNil(t, task.StartDate)
	started := *task.StartDate

	task.UpdateProgress(150)
	assert.Equal(t, 100, task.Progress, "progress is clamped")
	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.NotNil(t, task.CompletedDate)
	assert.True(t, task.StartDate.Equal(started))
}

func TestTask_UpdateStatus(t *testing.T) {
	task := &Task{Status: TaskStatusPending, Progress: 20}
	task.UpdateStatus(TaskStatusCompleted)
	assert.Equal(t, 100, task.Progress)
	assert.NotNil(t, task.CompletedDate)

	task = &Task{Status: TaskStatusPending}
	task.UpdateStatus(TaskStatusInProgress)
	require.NotNil(t, task.StartDate)
	first := *task.StartDate
	time.Sleep(2 * time.Millisecond)
	task.UpdateStatus(TaskStatusInProgress)
	assert.True(t, task.StartDate.Equal(first), "start date is stamped once")
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Now()
	task := &Task{Status: TaskStatusInProgress, DueDate: now.Add(-time.Hour)}
	assert.True(t, task.IsOverdue(now))

	task.Status = TaskStatusCompleted
	assert.False(t, task.IsOverdue(now))

	task = &Task{Status: TaskStatusPending, DueDate: now.Add(time.Hour)}
	assert.False(t, task.IsOverdue(now))
}

func TestCase_Paralegals(t *testing.T) {
	c := &Case{}
	c.AddParalegal("p1")
	c.AddParalegal("p2")
	assert.True(t, c.HasParalegal("p1"))

	c.RemoveParalegal("p1")
	assert.False(t, c.HasParalegal("p1"))
	assert.True(t, c.HasParalegal("p2"))
}

func TestCase_CloseArchive(t *testing.T) {
	c := &Case{Status: CaseStatusActive}
	c.Close(CaseStatusWon)
	assert.Equal(t, CaseStatusWon, c.Status)
	assert.NotNil(t, c.ClosedDate)

	c.Archive()
	assert.True(t, c.IsArchived)
	assert.NotNil(t, c.ArchivedAt)
	c.Unarchive()
	assert.False(t, c.IsArchived)
	assert.Nil(t, c.ArchivedAt)

	assert.True(t, IsValidCaseOutcome(CaseStatusLost))
	assert.False(t, IsValidCaseOutcome(CaseStatusActive))
}

func TestDocument_SoftDeleteRestore(t *testing.T) {
	d := &Document{}
	d.SoftDelete("admin")
	assert.True(t, d.IsDeleted)
	require.NotNil(t, d.DeletedBy)
	assert.Equal(t, "admin", *d.DeletedBy)

	d.Restore()
	assert.False(t, d.IsDeleted)
	assert.Nil(t, d.DeletedBy)

	d.RecordDownload()
	d.RecordDownload()
	assert.Equal(t, 2, d.DownloadCount)
	assert.NotNil(t, d.LastDownloadedAt)
}

func TestAccessPermissions_PermissionFor(t *testing.T) {
	p := AccessPermissions{AllowedUsers: []UserPermission{{UserID: "u1", Permission: PermissionEdit}}}
	assert.Equal(t, PermissionEdit, p.PermissionFor("u1"))
	assert.Empty(t, p.PermissionFor("u2"))
}

func TestTimelineEvent_Postpone(t *testing.T) {
	original := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	moved := original.AddDate(0, 0, 14)
	e := &TimelineEvent{EventType: EventHearingScheduled, EventDate: original}
	assert.True(t, e.IsHearing())

	e.MarkPostponed("Counsel ill", &moved)
	assert.Equal(t, TimelineStatusPostponed, e.Status)
	require.NotNil(t, e.HearingDetails)
	assert.True(t, e.HearingDetails.IsPostponed)
	assert.True(t, e.HearingDetails.NextHearingDate.Equal(moved))
	assert.True(t, e.EventDate.Equal(original))

	e.MarkCompleted("Adjourned sine die")
	assert.Equal(t, TimelineStatusCompleted, e.Status)
	assert.True(t, e.HearingDetails.IsCompleted)
	assert.Equal(t, "Adjourned sine die", e.HearingDetails.Outcome)
}

func TestMessage_Threading(t *testing.T) {
	root := &Message{ID: "root", ThreadID: "root"}
	reply := &Message{ID: "r1"}
	reply.ReplyTo(root)
	assert.Equal(t, "root", reply.ThreadID)

	nested := &Message{ID: "r2"}
	nested.ReplyTo(reply)
	assert.Equal(t, "root", nested.ThreadID)
	assert.Equal(t, "r1", *nested.ReplyToID)

	receiver, caseID := "u", "c"
	assert.Equal(t, 2, (&Message{ReceiverID: &receiver, CaseID: &caseID}).ContextCount())
}

func TestIsValidEventTime(t *testing.T) {
	assert.True(t, IsValidEventTime("09:30"))
	assert.True(t, IsValidEventTime("23:59"))
	assert.False(t, IsValidEventTime("24:00"))
	assert.True(t, IsValidEventTime("9:30"), "single-digit hours are accepted")
	assert.False(t, IsValidEventTime("10:60"))
}
