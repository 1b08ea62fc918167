package prescriptions

import (
	"context"
	"testing"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/db"
	"github.com/donazulmira/moradores-backend/pkg/db/dbtest"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      Service
	items    ItemService
	nurse    *models.User
	resident *models.Resident
	doctor   *models.Doctor
	meds     []models.Medication
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{Tx: db.NewFromConn(conn), Repo: repo})
	require.NoError(t, err)
	items, err := NewItemService(repo)
	require.NoError(t, err)

	nurse := &models.User{Username: "enf.bia", FullName: "Beatriz", CPF: "52998224725", PasswordHash: "x", Role: enums.RoleEnfermeiro, Active: true}
	require.NoError(t, conn.Create(nurse).Error)
	resident := &models.Resident{FullName: "Dona Cida", CPF: "39053344705", Active: true, UserID: nurse.ID}
	require.NoError(t, conn.Create(resident).Error)
	doctor := &models.Doctor{FullName: "Dr. Ramos", CRM: "1234/SP", Active: true}
	require.NoError(t, conn.Create(doctor).Error)
	meds := []models.Medication{{Name: "Losartana", Active: true}, {Name: "Metformina", Active: true}}
	require.NoError(t, conn.Create(&meds).Error)

	return &fixture{db: conn, svc: svc, items: items, nurse: nurse, resident: resident, doctor: doctor, meds: meds}
}

func (f *fixture) completeRequest(medIDs ...int64) CreateCompleteRequest {
	req := CreateCompleteRequest{CreatePrescriptionRequest: CreatePrescriptionRequest{
		ResidentID: f.resident.ID, DoctorID: f.doctor.ID, Month: "06", Year: "2026",
	}}
	for _, id := range medIDs {
		req.Items = append(req.Items, ItemInput{MedicationID: id, Dosage: " 1 cp 12/12h "})
	}
	return req
}

func TestCreateCompleteStampsItems(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.CreateComplete(context.Background(), f.completeRequest(f.meds[0].ID, f.meds[1].ID), f.nurse.ID)
	require.NoError(t, err)
	require.Len(t, p.Items, 2)
	for _, item := range p.Items {
		require.NotNil(t, item.UserID)
		assert.Equal(t, f.nurse.ID, *item.UserID)
		assert.Equal(t, "1 cp 12/12h", item.Dosage)
		require.NotNil(t, item.LinkedBy)
		assert.Equal(t, "enf.bia", *item.LinkedBy)
	}
	require.NotNil(t, p.Resident)
	assert.Equal(t, "Dona Cida", p.Resident.FullName)
	assert.Nil(t, p.Administrator)
}

func TestCreateCompleteRollsBackOnMissingMedication(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateComplete(context.Background(), f.completeRequest(f.meds[0].ID, 999), f.nurse.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, msgMedicationNotFound, pkgerrors.As(err).Message())

	var count int64
	require.NoError(t, f.db.Model(&models.Prescription{}).Count(&count).Error)
	assert.Zero(t, count)

	req := f.completeRequest()
	req.DoctorID = 404
	_, err = f.svc.CreateComplete(context.Background(), req, f.nurse.ID)
	assert.Equal(t, msgDoctorNotFound, pkgerrors.As(err).Message())
}

func TestListReportsLatestAdministration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older, err := f.svc.Create(ctx, f.completeRequest().CreatePrescriptionRequest)
	require.NoError(t, err)
	newer, err := f.svc.CreateComplete(ctx, f.completeRequest(f.meds[0].ID, f.meds[1].ID), f.nurse.ID)
	require.NoError(t, err)

	at := time.Date(2026, 6, 2, 8, 0, 0, 0, time.UTC)
	doses := []models.MedicationDose{
		{PrescriptionItemID: newer.Items[0].ID, UserID: f.nurse.ID, AdministeredAt: at},
		{PrescriptionItemID: newer.Items[1].ID, UserID: f.nurse.ID, AdministeredAt: at.Add(4 * time.Hour)},
	}
	require.NoError(t, f.db.Create(&doses).Error)

	page, err := f.svc.List(ctx, ListFilter{ResidentID: &f.resident.ID}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, newer.ID, page.Data[0].ID)
	require.NotNil(t, page.Data[0].AdministeredAt)
	assert.True(t, page.Data[0].AdministeredAt.Equal(at.Add(4*time.Hour)))
	require.NotNil(t, page.Data[0].Administrator)
	assert.Equal(t, "enf.bia", *page.Data[0].Administrator)
	assert.Equal(t, older.ID, page.Data[1].ID)
	assert.Nil(t, page.Data[1].AdministeredAt)

	rows, err := f.svc.Analytic(ctx, ListFilter{}, pagination.Params{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, rows.Total)
	assert.Equal(t, 2, rows.Page)
	require.Len(t, rows.Data, 1)
	assert.Equal(t, older.ID, rows.Data[0].PrescriptionID)
	assert.Nil(t, rows.Data[0].PrescriptionItemID)
}

func TestDeleteCascadesItemsAndDoses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreateComplete(ctx, f.completeRequest(f.meds[0].ID), f.nurse.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&models.MedicationDose{PrescriptionItemID: p.Items[0].ID, UserID: f.nurse.ID, AdministeredAt: time.Now().UTC()}).Error)

	out, err := f.svc.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, msgPrescriptionRemoved, out.Message)

	var items, doses int64
	require.NoError(t, f.db.Model(&models.PrescriptionItem{}).Count(&items).Error)
	require.NoError(t, f.db.Model(&models.MedicationDose{}).Count(&doses).Error)
	assert.Zero(t, items)
	assert.Zero(t, doses)

	_, err = f.svc.Get(ctx, p.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestItemLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.completeRequest().CreatePrescriptionRequest)
	require.NoError(t, err)

	_, err = f.items.Create(ctx, CreateItemRequest{MedicationID: f.meds[0].ID, PrescriptionID: 777, Dosage: "x"}, f.nurse.ID)
	assert.Equal(t, msgPrescriptionNotFound, pkgerrors.As(err).Message())

	item, err := f.items.Create(ctx, CreateItemRequest{MedicationID: f.meds[0].ID, PrescriptionID: p.ID, Dosage: "1 cp"}, f.nurse.ID)
	require.NoError(t, err)
	require.NotNil(t, item.Medication)
	assert.Equal(t, "Losartana", item.Medication.Name)

	dosage := "2 cp"
	updated, err := f.items.Update(ctx, item.ID, UpdateItemRequest{MedicationID: &f.meds[1].ID, Dosage: &dosage})
	require.NoError(t, err)
	assert.Equal(t, f.meds[1].ID, updated.MedicationID)
	assert.Equal(t, "2 cp", updated.Dosage)

	list, err := f.items.List(ctx, &p.ID, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	out, err := f.items.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, msgItemRemoved, out.Message)
	_, err = f.items.Get(ctx, item.ID)
	assert.Equal(t, msgItemNotFound, pkgerrors.As(err).Message())
}
