package domain

import "time"

// MigrationStatus はマイグレーションの適用状態を表す
type MigrationStatus string

const (
	MigrationStatusPending MigrationStatus = "pending"
	MigrationStatusApplied MigrationStatus = "applied"
)

// Migration はスキーママイグレーション1件を表す
type Migration struct {
	Version   string     // 例: "001"
	Name      string     // 例: "create_decks"
	AppliedAt *time.Time // 未適用の場合はnil
	FilePath  string
	Status    MigrationStatus
}

// IsApplied は適用済みかどうかを返す。
func (m *Migration) IsApplied() bool {
	return m.Status == MigrationStatusApplied
}
