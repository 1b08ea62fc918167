package models

// All lists every table model, parents first, for gorm auto-migration of
// sqlite databases.
func All() []any {
	return []any{
		&User{},
		&Resident{},
		&EvolutionEntry{},
		&DailyReport{},
		&ReportEntry{},
		&Doctor{},
		&Medication{},
		&Prescription{},
		&PrescriptionItem{},
		&MedicationDose{},
	}
}
