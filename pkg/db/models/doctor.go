package models

// Doctor prescribes medication to residents.
type Doctor struct {
	ID       int64  `gorm:"column:id_medico;primaryKey;autoIncrement"`
	FullName string `gorm:"column:nome_completo;not null"`
	CRM      string `gorm:"column:crm;not null;uniqueIndex"`
	Active   bool   `gorm:"column:situacao;not null"`
	UserID   *int64 `gorm:"column:id_usuario"`
}

func (Doctor) TableName() string { return "medico" }
