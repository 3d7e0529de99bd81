package models

// All returns every persisted model in dependency order, for migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&AuthToken{},
		&InviteRequest{},
		&Project{},
		&Blueprint{},
		&Document{},
		&AuditLog{},
		&DesignSession{},
	}
}
