package models

import "time"

// DailyReport aggregates several evolution entries. EvolutionEntryID mirrors
// the first linked entry for clients that predate the join table.
type DailyReport struct {
	ID               int64     `gorm:"column:id_relatorio_diario_geral;primaryKey;autoIncrement"`
	UserID           int64     `gorm:"column:id_usuario;not null;index"`
	EvolutionEntryID int64     `gorm:"column:id_evolucao_individual;not null"`
	Notes            string    `gorm:"column:observacoes;type:text;not null"`
	OccurredAt       time.Time `gorm:"column:data_hora;not null;index"`

	Author *User `gorm:"foreignKey:UserID;references:ID"`
}

func (DailyReport) TableName() string { return "relatoriodiariogeral" }

// ReportEntry is one row of the report to evolution entry join table.
type ReportEntry struct {
	ReportID         int64 `gorm:"column:id_relatorio_diario_geral;primaryKey;autoIncrement:false"`
	EvolutionEntryID int64 `gorm:"column:id_evolucao_individual;primaryKey;autoIncrement:false"`
}

func (ReportEntry) TableName() string { return "relatorio_evolucao" }
