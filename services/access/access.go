// Package access holds the fixed authorization rules for every entity.
// The functions are pure: they look only at the entity's owning and
// participant fields and never touch storage. Admin passes every can* check
// and is evaluated first.
package access

import (
	"slices"

	"lexcase_api_go/models"
)

// Actor is the authenticated identity performing an operation
type Actor struct {
	ID   string
	Role string
}

// ActorFrom builds an Actor from a user record
func ActorFrom(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Decision is the outcome of a check that may depend on the owning case
type Decision int

const (
	Denied Decision = iota
	Allowed
	// DeferToCaseAccess means visibility follows the case the entity belongs to
	DeferToCaseAccess
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case DeferToCaseAccess:
		return "defer_to_case_access"
	default:
		return "denied"
	}
}

// Resolve folds DeferToCaseAccess into a bool using CanViewCase. A nil case
// with a deferred decision is denied.
func Resolve(d Decision, c *models.Case, a Actor) bool {
	switch d {
	case Allowed:
		return true
	case DeferToCaseAccess:
		return c != nil && CanViewCase(c, a)
	default:
		return false
	}
}

// Case

func CanViewCase(c *models.Case, a Actor) bool {
	if a.IsAdmin() {
		return true
	}
	return c.ClientID == a.ID || c.AdvocateID == a.ID || c.HasParalegal(a.ID)
}

// CanEditCase allows only the advocate. The client owns the matter in
// business terms but cannot edit it.
func CanEditCase(c *models.Case, a Actor) bool {
	if a.IsAdmin() {
		return true
	}
	return c.AdvocateID == a.ID
}

// CanManageTimeline gates adding, updating and removing timeline events
func CanManageTimeline(c *models.Case, a Actor) bool {
	return CanEditCase(c, a)
}

// Document

func CanViewDocument(d *models.Document, a Actor) Decision {
	if a.IsAdmin() || d.UploadedBy == a.ID {
		return Allowed
	}
	perms := d.AccessPermissions
	if perms.IsPublic {
		return Allowed
	}
	if slices.Contains(perms.AllowedRoles, a.Role) {
		return Allowed
	}
	if perms.PermissionFor(a.ID) != "" {
		return Allowed
	}
	if d.CaseID != nil && *d.CaseID != "" {
		return DeferToCaseAccess
	}
	return Denied
}

func CanEditDocument(d *models.Document, a Actor) bool {
	if a.IsAdmin() || d.UploadedBy == a.ID {
		return true
	}
	p := d.AccessPermissions.PermissionFor(a.ID)
	return p == models.PermissionEdit || p == models.PermissionDelete
}

func CanDeleteDocument(d *models.Document, a Actor) bool {
	if a.IsAdmin() || d.UploadedBy == a.ID {
		return true
	}
	return d.AccessPermissions.PermissionFor(a.ID) == models.PermissionDelete
}

// Message

// CanViewMessage allows the two direct parties. Case-scoped messages with no
// receiver defer to the case; connection-scoped ones are checked by the
// caller with IsConnectionParticipant.
func CanViewMessage(m *models.Message, a Actor) Decision {
	if a.IsAdmin() || m.SenderID == a.ID {
		return Allowed
	}
	if m.ReceiverID != nil && *m.ReceiverID == a.ID {
		return Allowed
	}
	if m.ReceiverID == nil && m.CaseID != nil {
		return DeferToCaseAccess
	}
	return Denied
}

func CanDeleteMessage(m *models.Message, a Actor) bool {
	return a.IsAdmin() || m.SenderID == a.ID
}

// Notification

func CanViewNotification(n *models.Notification, a Actor) bool {
	return a.IsAdmin() || n.UserID == a.ID
}

// Task

func CanViewTask(t *models.Task, a Actor) bool {
	return a.IsAdmin() || t.AssignedBy == a.ID || t.AssignedTo == a.ID
}

func CanEditTask(t *models.Task, a Actor) bool {
	return a.IsAdmin() || t.AssignedBy == a.ID
}

// CanUpdateTaskStatus covers status and progress updates
func CanUpdateTaskStatus(t *models.Task, a Actor) bool {
	return a.IsAdmin() || t.AssignedBy == a.ID || t.AssignedTo == a.ID
}

// Reminder

func CanEditReminder(r *models.Reminder, a Actor) bool {
	return a.IsAdmin() || r.CreatedBy == a.ID
}

// IsReminderRecipient is a membership test, so admin gets no bypass. It grants
// snooze and dismiss, not edit.
func IsReminderRecipient(r *models.Reminder, a Actor) bool {
	return r.IsRecipient(a.ID)
}

// CanViewReminder allows the creator and any recipient
func CanViewReminder(r *models.Reminder, a Actor) bool {
	return CanEditReminder(r, a) || r.IsRecipient(a.ID)
}

// Activity

// CanViewActivity hides invisible entries from everyone but admin. The actor
// always sees their own entries; anyone else defers to the case.
func CanViewActivity(act *models.Activity, a Actor) Decision {
	if a.IsAdmin() {
		return Allowed
	}
	if !act.IsVisible {
		return Denied
	}
	if act.UserID == a.ID {
		return Allowed
	}
	return DeferToCaseAccess
}

// Note

func CanViewNote(n *models.Note, a Actor) bool {
	return a.IsAdmin() || n.IsOwnedBy(a.ID)
}

func CanEditNote(n *models.Note, a Actor) bool {
	return a.IsAdmin() || n.IsOwnedBy(a.ID)
}

// Connection

func CanViewConnection(c *models.Connection, a Actor) bool {
	return a.IsAdmin() || c.Involves(a.ID)
}

// IsConnectionParticipant is a membership test used for connection-scoped messages
func IsConnectionParticipant(c *models.Connection, a Actor) bool {
	return c.Involves(a.ID)
}
