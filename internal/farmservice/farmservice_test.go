// FilePath: internal/farmservice/farmservice_test.go
package farmservice

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mirnanodes/broilink-backend/internal/database"
	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
	"github.com/mirnanodes/broilink-backend/internal/status"
)

// fakeTx satisfies database.Transaction without touching a database.
type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }
func (fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

type baseFake struct{}

func (baseFake) BeginTx(ctx context.Context) (database.Transaction, error) { return fakeTx{}, nil }

type fakeFarmRepo struct {
	baseFake
	farms  map[int64]*models.Farm
	nextID int64
}

func newFakeFarmRepo() *fakeFarmRepo {
	return &fakeFarmRepo{farms: map[int64]*models.Farm{}, nextID: 1}
}

func (r *fakeFarmRepo) Create(ctx context.Context, farm *models.Farm) error {
	farm.ID = r.nextID
	r.nextID++
	cp := *farm
	r.farms[farm.ID] = &cp
	return nil
}

func (r *fakeFarmRepo) Get(ctx context.Context, id int64) (*models.Farm, error) {
	farm, ok := r.farms[id]
	if !ok {
		return nil, errors.NewNotFoundError("farm not found", nil)
	}
	cp := *farm
	return &cp, nil
}

func (r *fakeFarmRepo) Update(ctx context.Context, farm *models.Farm) error {
	if _, ok := r.farms[farm.ID]; !ok {
		return errors.NewNotFoundError("farm not found", nil)
	}
	cp := *farm
	r.farms[farm.ID] = &cp
	return nil
}

func (r *fakeFarmRepo) Delete(ctx context.Context, id int64) error {
	delete(r.farms, id)
	return nil
}

func (r *fakeFarmRepo) List(ctx context.Context, filters models.FarmFilters, page, limit int) (int64, []*models.Farm, error) {
	out := []*models.Farm{}
	for _, farm := range r.farms {
		if filters.OwnerID != 0 && farm.OwnerID != filters.OwnerID {
			continue
		}
		if filters.PeternakID != 0 && (farm.PeternakID == nil || *farm.PeternakID != filters.PeternakID) {
			continue
		}
		cp := *farm
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return total, []*models.Farm{}, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return total, out[start:end], nil
}

func (r *fakeFarmRepo) AssignPeternak(ctx context.Context, farmID int64, peternakID *int64) error {
	farm, ok := r.farms[farmID]
	if !ok {
		return errors.NewNotFoundError("farm not found", nil)
	}
	farm.PeternakID = peternakID
	return nil
}

func (r *fakeFarmRepo) DeleteWithChildren(ctx context.Context, id int64, tx database.Transaction) error {
	if _, ok := r.farms[id]; !ok {
		return errors.NewNotFoundError("farm not found", nil)
	}
	delete(r.farms, id)
	return nil
}

type fakeConfigRepo struct {
	baseFake
	configs map[int64]map[string]string
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{configs: map[int64]map[string]string{}}
}

func (r *fakeConfigRepo) GetAll(ctx context.Context, farmID int64) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range r.configs[farmID] {
		out[k] = v
	}
	return out, nil
}

func (r *fakeConfigRepo) SetValues(ctx context.Context, farmID int64, values map[string]string) error {
	if r.configs[farmID] == nil {
		r.configs[farmID] = map[string]string{}
	}
	for k, v := range values {
		r.configs[farmID][k] = v
	}
	return nil
}

func (r *fakeConfigRepo) Replace(ctx context.Context, farmID int64, values map[string]string) error {
	cp := map[string]string{}
	for k, v := range values {
		cp[k] = v
	}
	r.configs[farmID] = cp
	return nil
}

func (r *fakeConfigRepo) DeleteByFarmID(ctx context.Context, farmID int64, tx database.Transaction) error {
	delete(r.configs, farmID)
	return nil
}

type fakeSensorDataRepo struct {
	baseFake
	readings []models.SensorReading
}

func (r *fakeSensorDataRepo) InsertReading(ctx context.Context, reading *models.SensorReading) error {
	if reading.ID == "" {
		reading.ID = "rd_fake"
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now()
	}
	if reading.DataSource == "" {
		reading.DataSource = models.SourceIoT
	}
	r.readings = append(r.readings, *reading)
	return nil
}

func (r *fakeSensorDataRepo) InsertReadings(ctx context.Context, readings []models.SensorReading) error {
	r.readings = append(r.readings, readings...)
	return nil
}

func (r *fakeSensorDataRepo) GetRange(ctx context.Context, farmID int64, start, end time.Time) ([]models.SensorReading, error) {
	out := []models.SensorReading{}
	for _, rd := range r.readings {
		if rd.FarmID == farmID && !rd.Timestamp.Before(start) && !rd.Timestamp.After(end) {
			out = append(out, rd)
		}
	}
	return out, nil
}

func (r *fakeSensorDataRepo) GetLatest(ctx context.Context, farmID int64) (*models.SensorReading, error) {
	var latest *models.SensorReading
	for i := range r.readings {
		rd := r.readings[i]
		if rd.FarmID != farmID {
			continue
		}
		if latest == nil || rd.Timestamp.After(latest.Timestamp) {
			cp := rd
			latest = &cp
		}
	}
	if latest == nil {
		return nil, errors.NewNotFoundError("no readings for farm", nil)
	}
	return latest, nil
}

func (r *fakeSensorDataRepo) DeleteOldData(ctx context.Context, before time.Time) error { return nil }

func (r *fakeSensorDataRepo) DeleteByFarmID(ctx context.Context, farmID int64, tx database.Transaction) error {
	kept := r.readings[:0]
	for _, rd := range r.readings {
		if rd.FarmID != farmID {
			kept = append(kept, rd)
		}
	}
	r.readings = kept
	return nil
}

type fakeReportRepo struct {
	baseFake
	reports map[int64]map[string]*models.ManualReport
	nextID  int64
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[int64]map[string]*models.ManualReport{}, nextID: 1}
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

func (r *fakeReportRepo) Upsert(ctx context.Context, report *models.ManualReport) error {
	if r.reports[report.FarmID] == nil {
		r.reports[report.FarmID] = map[string]*models.ManualReport{}
	}
	key := dateKey(report.ReportDate)
	now := time.Now()
	if existing, ok := r.reports[report.FarmID][key]; ok {
		report.ID = existing.ID
		report.CreatedAt = existing.CreatedAt
	} else {
		report.ID = r.nextID
		r.nextID++
		report.CreatedAt = now
	}
	report.UpdatedAt = now
	cp := *report
	r.reports[report.FarmID][key] = &cp
	return nil
}

func (r *fakeReportRepo) GetByDate(ctx context.Context, farmID int64, reportDate time.Time) (*models.ManualReport, error) {
	report, ok := r.reports[farmID][dateKey(reportDate)]
	if !ok {
		return nil, errors.NewNotFoundError("manual report not found", nil)
	}
	cp := *report
	return &cp, nil
}

func (r *fakeReportRepo) GetRange(ctx context.Context, farmID int64, start, end time.Time) ([]models.ManualReport, error) {
	out := []models.ManualReport{}
	for _, report := range r.reports[farmID] {
		if !report.ReportDate.Before(start) && !report.ReportDate.After(end) {
			out = append(out, *report)
		}
	}
	return out, nil
}

func (r *fakeReportRepo) GetRangeByUpdatedAt(ctx context.Context, farmID int64, start, end time.Time) ([]models.ManualReport, error) {
	out := []models.ManualReport{}
	for _, report := range r.reports[farmID] {
		if !report.UpdatedAt.Before(start) && !report.UpdatedAt.After(end) {
			out = append(out, *report)
		}
	}
	return out, nil
}

func (r *fakeReportRepo) DeleteByFarmID(ctx context.Context, farmID int64, tx database.Transaction) error {
	delete(r.reports, farmID)
	return nil
}

type fakeUserRepo struct {
	baseFake
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Get(ctx context.Context, id int64) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NewNotFoundError("user not found", nil)
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, errors.NewNotFoundError("user not found", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return errors.NewNotFoundError("user not found", nil)
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id int64, lastLogin time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return errors.NewNotFoundError("user not found", nil)
	}
	user.LastLogin = &lastLogin
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, filters models.UserFilters, page, limit int) (int64, []*models.User, error) {
	out := []*models.User{}
	for _, user := range r.users {
		if filters.RoleID != 0 && user.RoleID != filters.RoleID {
			continue
		}
		cp := *user
		out = append(out, &cp)
	}
	return int64(len(out)), out, nil
}

type fakeRequestRepo struct {
	baseFake
	requests map[int64]*models.RequestLog
	nextID   int64
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[int64]*models.RequestLog{}, nextID: 1}
}

func (r *fakeRequestRepo) Create(ctx context.Context, req *models.RequestLog) error {
	req.RequestID = r.nextID
	r.nextID++
	if req.Status == "" {
		req.Status = models.RequestStatusPending
	}
	cp := *req
	r.requests[req.RequestID] = &cp
	return nil
}

func (r *fakeRequestRepo) Get(ctx context.Context, id int64) (*models.RequestLog, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, errors.NewNotFoundError("request not found", nil)
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRequestRepo) List(ctx context.Context, status string, offset, limit int) ([]*models.RequestLog, error) {
	out := []*models.RequestLog{}
	for _, req := range r.requests {
		if status != "" && req.Status != status {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRequestRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	req, ok := r.requests[id]
	if !ok {
		return errors.NewNotFoundError("request not found", nil)
	}
	req.Status = status
	return nil
}

type fakeTelegramRepo struct {
	baseFake
	links map[int64]int64 // userID -> chatID
}

func newFakeTelegramRepo() *fakeTelegramRepo {
	return &fakeTelegramRepo{links: map[int64]int64{}}
}

func (r *fakeTelegramRepo) Link(ctx context.Context, userID, chatID int64) error {
	for uid, cid := range r.links {
		if cid == chatID {
			delete(r.links, uid)
		}
	}
	r.links[userID] = chatID
	return nil
}

func (r *fakeTelegramRepo) GetByChatID(ctx context.Context, chatID int64) (*models.TelegramLink, error) {
	for uid, cid := range r.links {
		if cid == chatID {
			return &models.TelegramLink{UserID: uid, ChatID: cid}, nil
		}
	}
	return nil, errors.NewNotFoundError("telegram link not found", nil)
}

func (r *fakeTelegramRepo) GetByUserID(ctx context.Context, userID int64) (*models.TelegramLink, error) {
	cid, ok := r.links[userID]
	if !ok {
		return nil, errors.NewNotFoundError("telegram link not found", nil)
	}
	return &models.TelegramLink{UserID: userID, ChatID: cid}, nil
}

func (r *fakeTelegramRepo) ListAll(ctx context.Context) ([]models.TelegramLink, error) {
	out := []models.TelegramLink{}
	for uid, cid := range r.links {
		out = append(out, models.TelegramLink{UserID: uid, ChatID: cid})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *fakeTelegramRepo) Unlink(ctx context.Context, userID int64) error {
	delete(r.links, userID)
	return nil
}

// newTestService wires a FarmService over fakes with one owner, one
// peternak and one farm with default config.
func newTestService(t *testing.T) (*FarmService, *models.Farm, *fakeSensorDataRepo, *fakeReportRepo) {
	t.Helper()

	users := newFakeUserRepo()
	farms := newFakeFarmRepo()
	configs := newFakeConfigRepo()
	sensorData := &fakeSensorDataRepo{}
	reports := newFakeReportRepo()

	svc := New(farms, configs, sensorData, reports, users, newFakeTelegramRepo(), newFakeRequestRepo(), nil)

	owner := &models.User{RoleID: models.RoleOwner, Email: "owner@example.com", Name: "Owner"}
	require.NoError(t, users.Create(context.Background(), owner))
	peternak := &models.User{RoleID: models.RolePeternak, Email: "peternak@example.com", Name: "Peternak"}
	require.NoError(t, users.Create(context.Background(), peternak))

	farm := &models.Farm{OwnerID: owner.ID, Name: "Kandang A", Location: "Sleman"}
	require.NoError(t, svc.CreateFarm(context.Background(), farm))
	require.NoError(t, svc.AssignPeternak(context.Background(), farm.ID, &peternak.ID))

	return svc, farm, sensorData, reports
}

func TestCreateFarmSeedsDefaultConfig(t *testing.T) {
	svc, farm, _, _ := newTestService(t)

	config, err := svc.GetFarmConfig(context.Background(), farm.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultFarmConfig(), config)
}

func TestCreateFarmRejectsPeternakOwner(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	farm := &models.Farm{OwnerID: 2, Name: "Kandang B"} // user 2 is the peternak
	err := svc.CreateFarm(context.Background(), farm)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestUpdateFarmConfigValidation(t *testing.T) {
	svc, farm, _, _ := newTestService(t)
	ctx := context.Background()

	err := svc.UpdateFarmConfig(ctx, farm.ID, map[string]string{"bogus_param": "1"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	err = svc.UpdateFarmConfig(ctx, farm.ID, map[string]string{models.ParamTempNormalMax: "very hot"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	err = svc.UpdateFarmConfig(ctx, farm.ID, map[string]string{models.ParamTempNormalMax: "33"})
	require.NoError(t, err)

	config, err := svc.GetFarmConfig(ctx, farm.ID)
	require.NoError(t, err)
	assert.Equal(t, "33", config[models.ParamTempNormalMax])
	// Untouched parameters keep their values.
	assert.Equal(t, "28", config[models.ParamTempNormalMin])
}

func TestResetFarmConfig(t *testing.T) {
	svc, farm, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpdateFarmConfig(ctx, farm.ID, map[string]string{models.ParamTempNormalMax: "40"}))

	config, err := svc.ResetFarmConfig(ctx, farm.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultFarmConfig(), config)
}

func TestGetFarmStatusWithoutReadings(t *testing.T) {
	svc, farm, _, _ := newTestService(t)

	fs, err := svc.GetFarmStatus(context.Background(), farm.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusUnknown, fs.Status)
	assert.Nil(t, fs.Reading)
}

func TestGetFarmStatusClassifiesLatest(t *testing.T) {
	svc, farm, sensorData, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SubmitReading(ctx, &models.SensorReading{
		FarmID: farm.ID, Timestamp: time.Now().Add(-time.Hour),
		Temperature: 30, Humidity: 60, Ammonia: 10,
	}))
	require.NoError(t, svc.SubmitReading(ctx, &models.SensorReading{
		FarmID: farm.ID, Timestamp: time.Now(),
		Temperature: 36, Humidity: 60, Ammonia: 10,
	}))
	require.Len(t, sensorData.readings, 2)

	fs, err := svc.GetFarmStatus(ctx, farm.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusCritical, fs.Status)
	require.NotNil(t, fs.Reading)
	assert.Equal(t, 36.0, fs.Reading.Temperature)
}

func TestListMonitoredFarmsSweepsAllPages(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	// Push the farm count well past one listing page.
	for i := 0; i < 150; i++ {
		require.NoError(t, svc.CreateFarm(ctx, &models.Farm{
			OwnerID: 1, Name: fmt.Sprintf("Kandang %d", i),
		}))
	}

	farms, err := svc.ListMonitoredFarms(ctx)
	require.NoError(t, err)
	require.Len(t, farms, 151)

	seen := map[int64]bool{}
	for _, farm := range farms {
		seen[farm.ID] = true
	}
	assert.Len(t, seen, 151, "every farm appears exactly once")
}

func TestGetFarmStatusUnknownWithoutConfig(t *testing.T) {
	svc, farm, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SubmitReading(ctx, &models.SensorReading{
		FarmID: farm.ID, Timestamp: time.Now(),
		Temperature: 45, Humidity: 60, Ammonia: 10,
	}))

	// With the config rows gone the reading has nothing to classify
	// against, even though GetFarmConfig still answers with defaults.
	require.NoError(t, svc.Configs.DeleteByFarmID(ctx, farm.ID, nil))

	fs, err := svc.GetFarmStatus(ctx, farm.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusUnknown, fs.Status)
	require.NotNil(t, fs.Reading)

	config, err := svc.GetFarmConfig(ctx, farm.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultFarmConfig(), config)
}

func TestGetMonitoringBucketsReadings(t *testing.T) {
	svc, farm, _, _ := newTestService(t)
	ctx := context.Background()

	for _, hour := range []int{1, 2, 13} {
		require.NoError(t, svc.SubmitReading(ctx, &models.SensorReading{
			FarmID:      farm.ID,
			Timestamp:   time.Date(2024, time.March, 15, hour, 0, 0, 0, time.UTC),
			Temperature: 30, Humidity: 60, Ammonia: 10,
		}))
	}

	series, err := svc.GetMonitoring(ctx, farm.ID, "1_day", "2024-03-15")
	require.NoError(t, err)
	require.Len(t, series.Temperature, 6)
	require.NotNil(t, series.Temperature[0])
	assert.Equal(t, 30, *series.Temperature[0])
	require.NotNil(t, series.Temperature[3])
	assert.Nil(t, series.Temperature[1])
}

func TestGetMonitoringRejectsBadRange(t *testing.T) {
	svc, farm, _, _ := newTestService(t)

	_, err := svc.GetMonitoring(context.Background(), farm.ID, "1_year", "")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestGetAnalysisWeeklySingleReport(t *testing.T) {
	svc, farm, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SubmitManualReport(ctx, &models.ManualReport{
		FarmID:     farm.ID,
		ReportedBy: 2,
		ReportDate: time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC),
		FeedKg:     120,
	}))

	series, err := svc.GetAnalysis(ctx, farm.ID, "1_week", "2024-03-15")
	require.NoError(t, err)
	require.Len(t, series.Feed, 7)

	// 2024-03-12 falls in bucket 3 of the Sat..Fri window.
	require.NotNil(t, series.Feed[3])
	assert.Equal(t, 120, *series.Feed[3])
	for i := 0; i < 7; i++ {
		if i == 3 {
			continue
		}
		assert.Nil(t, series.Feed[i], "bucket %d", i)
	}

	require.NotNil(t, series.Overview)
	assert.Equal(t, status.StatusUnknown, series.Overview.Status)
}

func TestGetAnalysisDayFetchesByEditTime(t *testing.T) {
	svc, farm, _, reports := newTestService(t)
	ctx := context.Background()

	// A report logically dated yesterday but edited today must appear in
	// today's day view, in the bucket of the edit hour.
	reports.reports[farm.ID] = map[string]*models.ManualReport{
		"2024-03-14": {
			ID:         1,
			FarmID:     farm.ID,
			ReportedBy: 2,
			ReportDate: time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
			FeedKg:     120,
			CreatedAt:  time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC),
		},
	}

	series, err := svc.GetAnalysis(ctx, farm.ID, "1_day", "2024-03-15")
	require.NoError(t, err)
	require.Len(t, series.Feed, 6)

	// 14:30 lands in the 12:00-16:00 slot.
	require.NotNil(t, series.Feed[3])
	assert.Equal(t, 120, *series.Feed[3])
	for i := 0; i < 6; i++ {
		if i == 3 {
			continue
		}
		assert.Nil(t, series.Feed[i], "bucket %d", i)
	}

	// The day after the edit the report belongs to yesterday's view only.
	series, err = svc.GetAnalysis(ctx, farm.ID, "1_day", "2024-03-16")
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		assert.Nil(t, series.Feed[i], "bucket %d", i)
	}
}

func TestSubmitManualReportOverwritesSameDate(t *testing.T) {
	svc, farm, _, reports := newTestService(t)
	ctx := context.Background()
	date := time.Date(2024, time.March, 12, 10, 30, 0, 0, time.UTC)

	require.NoError(t, svc.SubmitManualReport(ctx, &models.ManualReport{
		FarmID: farm.ID, ReportedBy: 2, ReportDate: date, FeedKg: 100,
	}))
	require.NoError(t, svc.SubmitManualReport(ctx, &models.ManualReport{
		FarmID: farm.ID, ReportedBy: 2, ReportDate: date, FeedKg: 150,
	}))

	stored, err := svc.GetManualReport(ctx, farm.ID, date)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 150.0, stored.FeedKg)
	assert.Len(t, reports.reports[farm.ID], 1, "same date must not create a second row")
}

func TestSubmitManualReportPeternakAuthorization(t *testing.T) {
	svc, farm, _, _ := newTestService(t)

	// User 99 claims the peternak role but is not assigned to the farm.
	ctx := context.WithValue(context.Background(), ContextKeyUserID, int64(99))
	ctx = context.WithValue(ctx, ContextKeyUserRoles, []string{"peternak"})

	err := svc.SubmitManualReport(ctx, &models.ManualReport{
		FarmID: farm.ID, ReportDate: time.Now(), FeedKg: 10,
	})
	require.Error(t, err)

	// The assigned peternak (user 2) may report.
	ctx = context.WithValue(context.Background(), ContextKeyUserID, int64(2))
	ctx = context.WithValue(ctx, ContextKeyUserRoles, []string{"peternak"})
	err = svc.SubmitManualReport(ctx, &models.ManualReport{
		FarmID: farm.ID, ReportDate: time.Now(), FeedKg: 10,
	})
	require.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{RoleID: models.RoleOwner, Email: "login@example.com", PasswordHash: string(hash)}
	require.NoError(t, svc.Users.Create(ctx, user))

	got, err := svc.Authenticate(ctx, "login@example.com", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "login@example.com", "salah")
	require.Error(t, err)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "rahasia123")
	require.Error(t, err)
}

func TestDeleteFarmCascades(t *testing.T) {
	svc, farm, sensorData, reports := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SubmitReading(ctx, &models.SensorReading{
		FarmID: farm.ID, Temperature: 30, Humidity: 60, Ammonia: 10,
	}))
	require.NoError(t, svc.SubmitManualReport(ctx, &models.ManualReport{
		FarmID: farm.ID, ReportedBy: 2, ReportDate: time.Now(), FeedKg: 10,
	}))

	require.NoError(t, svc.DeleteFarm(ctx, farm.ID))

	_, err := svc.GetFarm(ctx, farm.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, sensorData.readings)
	assert.Empty(t, reports.reports[farm.ID])
}

func TestOwnerDashboard(t *testing.T) {
	svc, farm, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SubmitReading(ctx, &models.SensorReading{
		FarmID: farm.ID, Timestamp: time.Now(), Temperature: 33, Humidity: 60, Ammonia: 10,
	}))

	dashboard, err := svc.GetOwnerDashboard(ctx, farm.OwnerID)
	require.NoError(t, err)
	require.Len(t, dashboard.Farms, 1)
	assert.Equal(t, status.StatusWarning, dashboard.Farms[0].Status)
}

func TestPeternakDashboard(t *testing.T) {
	svc, farm, _, _ := newTestService(t)
	ctx := context.Background()

	dashboard, err := svc.GetPeternakDashboard(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, dashboard.Farm)
	assert.Equal(t, farm.ID, dashboard.Farm.Farm.ID)
	assert.False(t, dashboard.ReportedToday)

	require.NoError(t, svc.SubmitManualReport(ctx, &models.ManualReport{
		FarmID: farm.ID, ReportedBy: 2, ReportDate: time.Now().UTC(), FeedKg: 12,
	}))

	dashboard, err = svc.GetPeternakDashboard(ctx, 2)
	require.NoError(t, err)
	assert.True(t, dashboard.ReportedToday)
}

func TestPeternakDashboardWeekSummary(t *testing.T) {
	svc, farm, _, _ := newTestService(t)
	ctx := context.Background()

	today := time.Now().UTC()
	require.NoError(t, svc.SubmitManualReport(ctx, &models.ManualReport{
		FarmID: farm.ID, ReportedBy: 2, ReportDate: today.AddDate(0, 0, -2),
		FeedKg: 118.6, WaterL: 201.2, AvgWeight: 1.4, MortalityCount: 2,
	}))
	require.NoError(t, svc.SubmitManualReport(ctx, &models.ManualReport{
		FarmID: farm.ID, ReportedBy: 2, ReportDate: today,
		FeedKg: 120, WaterL: 210, AvgWeight: 1.6, MortalityCount: 1,
	}))
	// Older than the 7-day window, must not appear.
	require.NoError(t, svc.SubmitManualReport(ctx, &models.ManualReport{
		FarmID: farm.ID, ReportedBy: 2, ReportDate: today.AddDate(0, 0, -10),
		FeedKg: 999,
	}))

	dashboard, err := svc.GetPeternakDashboard(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, dashboard.WeekSummary)

	summary := dashboard.WeekSummary
	require.Len(t, summary.Labels, 2)
	assert.Equal(t, []int{119, 120}, summary.Feed)
	assert.Equal(t, []int{201, 210}, summary.Water)
	assert.Equal(t, []int{1, 2}, summary.AvgWeight)
	assert.Equal(t, []int{2, 1}, summary.Mortality)
}

func TestResolveRequest(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	req := &models.RequestLog{UserID: 1, RequestContent: "tambah kandang baru"}
	require.NoError(t, svc.SubmitRequest(ctx, req))

	require.NoError(t, svc.ResolveRequest(ctx, req.RequestID, true))

	stored, err := svc.Requests.Get(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, stored.Status)

	// Already resolved.
	err = svc.ResolveRequest(ctx, req.RequestID, false)
	require.Error(t, err)
}
