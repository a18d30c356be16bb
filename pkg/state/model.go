package state

// EmittedURN records one URN produced by a named pipeline's last completed
// pass. Mapped to table <emitted_urns>.
type EmittedURN struct {
	Pipeline       string `gorm:"column:pipeline;primaryKey"`
	URN            string `gorm:"column:urn;primaryKey"`
	IngestionRunID string `gorm:"column:ingestion_run_id;not null"`
	LastSeenAt     int64  `gorm:"column:last_seen_at;not null"`
}

func (EmittedURN) TableName() string {
	return "emitted_urns"
}
