package models

// All returns every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Counter{},
		&Case{},
		&Connection{},
		&Task{},
		&Reminder{},
		&TimelineEvent{},
		&Document{},
		&Message{},
		&Notification{},
		&Activity{},
		&Note{},
	}
}
