package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tdlma/backend/internal/model"
	"tdlma/backend/internal/repository"
)

var mockSeq int

func nextMockID(prefix string) string {
	mockSeq++
	return fmt.Sprintf("%s-%04d", prefix, mockSeq)
}

func inDateRange(d, from, to time.Time) bool {
	d = dateOf(d)
	return !d.Before(dateOf(from)) && !d.After(dateOf(to))
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users   map[string]*model.User
	history []model.UserStatusHistory
	err     error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = nextMockID("user")
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.User, error) {
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockUserRepo) CreatedBefore(_ context.Context, before time.Time) ([]model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.User
	for _, u := range m.users {
		if u.CreatedAt.Before(before) {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockUserRepo) UpdateStatus(_ context.Context, id, status, _ string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Status = status
	return nil
}

func (m *mockUserRepo) CreateStatusHistory(_ context.Context, h *model.UserStatusHistory) error {
	if h.HistoryID == "" {
		h.HistoryID = nextMockID("hist")
	}
	m.history = append(m.history, *h)
	return nil
}

func (m *mockUserRepo) ListStatusHistory(_ context.Context, userIDs []string) ([]model.UserStatusHistory, error) {
	want := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	var result []model.UserStatusHistory
	for _, h := range m.history {
		if want[h.UserID] {
			result = append(result, h)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].EffectiveDate.Before(result[j].EffectiveDate) })
	return result, nil
}

// ── Mock SettingRepository ──
// 模拟数据库两条唯一约束：(key, effective_from) 与每个 key 至多一个 effective_to IS NULL

type mockSettingRepo struct {
	versions []*model.SettingVersion
	err      error
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{}
}

func (m *mockSettingRepo) list(key string) []model.SettingVersion {
	var result []model.SettingVersion
	for _, v := range m.versions {
		if key == "" || v.SettingKey == key {
			result = append(result, *v)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SettingKey != result[j].SettingKey {
			return result[i].SettingKey < result[j].SettingKey
		}
		return result[i].EffectiveFrom.Before(result[j].EffectiveFrom)
	})
	return result
}

func (m *mockSettingRepo) ListByKey(_ context.Context, key string) ([]model.SettingVersion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list(key), nil
}

func (m *mockSettingRepo) ListByKeyForUpdate(_ context.Context, key string) ([]model.SettingVersion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list(key), nil
}

func (m *mockSettingRepo) ListAll(_ context.Context) ([]model.SettingVersion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list(""), nil
}

func (m *mockSettingRepo) Create(_ context.Context, v *model.SettingVersion) error {
	for _, e := range m.versions {
		if e.SettingKey != v.SettingKey {
			continue
		}
		if e.EffectiveFrom.Equal(v.EffectiveFrom) {
			return gorm.ErrDuplicatedKey
		}
		if e.EffectiveTo == nil && v.EffectiveTo == nil {
			return gorm.ErrDuplicatedKey
		}
	}
	if v.VersionID == "" {
		v.VersionID = nextMockID("ver")
	}
	cp := *v
	m.versions = append(m.versions, &cp)
	return nil
}

func (m *mockSettingRepo) Close(_ context.Context, versionID string, effectiveTo time.Time) (int64, error) {
	for _, v := range m.versions {
		if v.VersionID == versionID && v.EffectiveTo == nil {
			to := effectiveTo
			v.EffectiveTo = &to
			return 1, nil
		}
	}
	return 0, nil
}

// seed 直接写入一个版本（测试准备数据用）
func (m *mockSettingRepo) seed(key, value, from string, to string) {
	v := &model.SettingVersion{
		VersionID:     nextMockID("ver"),
		SettingKey:    key,
		Value:         value,
		EffectiveFrom: mustDate(from),
	}
	if to != "" {
		t := mustDate(to)
		v.EffectiveTo = &t
	}
	m.versions = append(m.versions, v)
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	rows map[string]*model.Attendance
	err  error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{rows: make(map[string]*model.Attendance)}
}

func attendanceKey(userID string, date time.Time, mealType string) string {
	return userID + "|" + formatDate(date) + "|" + mealType
}

func (m *mockAttendanceRepo) Get(_ context.Context, userID string, date time.Time, mealType string) (*model.Attendance, error) {
	if a, ok := m.rows[attendanceKey(userID, date, mealType)]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) UpsertStatus(_ context.Context, a *model.Attendance) error {
	k := attendanceKey(a.UserID, a.Date, a.MealType)
	if e, ok := m.rows[k]; ok {
		e.Status = a.Status
		e.FineAmount = a.FineAmount
		return nil
	}
	if a.AttendanceID == "" {
		a.AttendanceID = nextMockID("att")
	}
	cp := *a
	m.rows[k] = &cp
	return nil
}

func (m *mockAttendanceRepo) UpsertOpen(_ context.Context, a *model.Attendance) error {
	k := attendanceKey(a.UserID, a.Date, a.MealType)
	if e, ok := m.rows[k]; ok {
		e.IsOpen = a.IsOpen
		e.FineAmount = a.FineAmount
		return nil
	}
	if a.AttendanceID == "" {
		a.AttendanceID = nextMockID("att")
	}
	cp := *a
	m.rows[k] = &cp
	return nil
}

func (m *mockAttendanceRepo) ListByUser(_ context.Context, userID string, from, to time.Time) ([]model.Attendance, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Attendance
	for _, a := range m.rows {
		if a.UserID == userID && inDateRange(a.Date, from, to) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *mockAttendanceRepo) ListRange(_ context.Context, from, to time.Time) ([]model.Attendance, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Attendance
	for _, a := range m.rows {
		if inDateRange(a.Date, from, to) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// ── Mock OffDayRepository ──

type mockOffDayRepo struct {
	days map[string]*model.OffDay
}

func newMockOffDayRepo() *mockOffDayRepo {
	return &mockOffDayRepo{days: make(map[string]*model.OffDay)}
}

func (m *mockOffDayRepo) Create(_ context.Context, d *model.OffDay) error {
	for _, e := range m.days {
		if e.Date.Equal(d.Date) {
			return gorm.ErrDuplicatedKey
		}
	}
	if d.OffDayID == "" {
		d.OffDayID = nextMockID("off")
	}
	m.days[d.OffDayID] = d
	return nil
}

func (m *mockOffDayRepo) CreateIgnoreDuplicates(ctx context.Context, days []model.OffDay) (int64, error) {
	var n int64
	for i := range days {
		d := days[i]
		if err := m.Create(ctx, &d); err == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockOffDayRepo) GetByID(_ context.Context, id string) (*model.OffDay, error) {
	if d, ok := m.days[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOffDayRepo) ListRange(_ context.Context, from, to time.Time) ([]model.OffDay, error) {
	var result []model.OffDay
	for _, d := range m.days {
		if inDateRange(d.Date, from, to) {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *mockOffDayRepo) Delete(_ context.Context, id string) error {
	delete(m.days, id)
	return nil
}

// ── Mock GuestRepository ──

type mockGuestRepo struct {
	guests []*model.GuestEntry
}

func newMockGuestRepo() *mockGuestRepo {
	return &mockGuestRepo{}
}

func (m *mockGuestRepo) Create(_ context.Context, g *model.GuestEntry) error {
	if g.GuestID == "" {
		g.GuestID = nextMockID("guest")
	}
	cp := *g
	m.guests = append(m.guests, &cp)
	return nil
}

func (m *mockGuestRepo) ListByInviter(_ context.Context, inviterID string, from, to time.Time) ([]model.GuestEntry, error) {
	var result []model.GuestEntry
	for _, g := range m.guests {
		if g.InviterID == inviterID && inDateRange(g.Date, from, to) {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGuestRepo) ListRange(_ context.Context, from, to time.Time) ([]model.GuestEntry, error) {
	var result []model.GuestEntry
	for _, g := range m.guests {
		if inDateRange(g.Date, from, to) {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGuestRepo) Reprice(_ context.Context, from time.Time, to *time.Time, price decimal.Decimal, _ string) (int64, error) {
	var n int64
	for _, g := range m.guests {
		if g.Date.Before(from) || (to != nil && g.Date.After(*to)) || g.Amount.Equal(price) {
			continue
		}
		g.Amount = price
		n++
	}
	return n, nil
}

func (m *mockGuestRepo) byName(name string) *model.GuestEntry {
	for _, g := range m.guests {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// ── Mock TransactionRepository ──

type mockTransactionRepo struct {
	txs []model.Transaction
	err error
}

func newMockTransactionRepo() *mockTransactionRepo {
	return &mockTransactionRepo{}
}

func (m *mockTransactionRepo) Create(_ context.Context, t *model.Transaction) error {
	if t.TransactionID == "" {
		t.TransactionID = nextMockID("tx")
	}
	m.txs = append(m.txs, *t)
	return nil
}

func (m *mockTransactionRepo) ListByUser(_ context.Context, userID string, from, to time.Time) ([]model.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Transaction
	for _, t := range m.txs {
		if t.UserID == userID && !t.CreatedAt.Before(from) && t.CreatedAt.Before(to.AddDate(0, 0, 1)) {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockTransactionRepo) ListRange(_ context.Context, from, to time.Time) ([]model.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Transaction
	for _, t := range m.txs {
		if !t.CreatedAt.Before(from) && t.CreatedAt.Before(to.AddDate(0, 0, 1)) {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockTransactionRepo) ListPaged(_ context.Context, userID string, offset, limit int) ([]model.Transaction, int64, error) {
	var all []model.Transaction
	for _, t := range m.txs {
		if userID == "" || t.UserID == userID {
			all = append(all, t)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── 测试夹具 ──

type testEnv struct {
	repo       *repository.Repository
	users      *mockUserRepo
	settings   *mockSettingRepo
	attendance *mockAttendanceRepo
	offDays    *mockOffDayRepo
	guests     *mockGuestRepo
	txs        *mockTransactionRepo
	clock      *Clock
	logger     *zap.Logger
	settingSvc SettingService
	membership MembershipService
}

// newTestEnv 组装 mock Repository；now 为账务时区下的「当前时间」
func newTestEnv(now time.Time) *testEnv {
	env := &testEnv{
		users:      newMockUserRepo(),
		settings:   newMockSettingRepo(),
		attendance: newMockAttendanceRepo(),
		offDays:    newMockOffDayRepo(),
		guests:     newMockGuestRepo(),
		txs:        newMockTransactionRepo(),
		clock:      FixedClock(now),
		logger:     zap.NewNop(),
	}
	env.repo = &repository.Repository{
		User:        env.users,
		Setting:     env.settings,
		Attendance:  env.attendance,
		OffDay:      env.offDays,
		Guest:       env.guests,
		Transaction: env.txs,
	}
	env.settingSvc = NewSettingService(env.repo, nil, env.clock, 0, env.logger)
	env.membership = NewMembershipService(env.repo, env.clock, true, env.logger)
	return env
}

func (e *testEnv) addUser(id, name, createdOn string) *model.User {
	u := &model.User{
		UserID: id,
		Name:   name,
		Email:  id + "@test.com",
		Role:   model.RoleUser,
		Status: model.UserStatusActive,
	}
	u.CreatedAt = e.clock.DayStart(mustDate(createdOn)).Add(9 * time.Hour)
	e.users.users[id] = u
	return u
}

func (e *testEnv) addAttendance(userID, date string, status *model.AttendanceStatus, isOpen bool) {
	a := &model.Attendance{
		AttendanceID: nextMockID("att"),
		UserID:       userID,
		Date:         mustDate(date),
		MealType:     model.MealTypeLunch,
		Status:       status,
		IsOpen:       isOpen,
	}
	e.attendance.rows[attendanceKey(userID, a.Date, a.MealType)] = a
}

func (e *testEnv) addGuest(inviterID, name, date, amount string) {
	e.guests.guests = append(e.guests.guests, &model.GuestEntry{
		GuestID:   nextMockID("guest"),
		InviterID: inviterID,
		Name:      name,
		Date:      mustDate(date),
		MealType:  model.MealTypeLunch,
		Amount:    decimal.RequireFromString(amount),
	})
}

func (e *testEnv) addTransaction(userID, amount string, txType model.TransactionType, on string) {
	t := model.Transaction{
		TransactionID: nextMockID("tx"),
		UserID:        userID,
		Amount:        decimal.RequireFromString(amount),
		Type:          txType,
	}
	t.CreatedAt = e.clock.DayStart(mustDate(on)).Add(12 * time.Hour)
	e.txs.txs = append(e.txs.txs, t)
}

func (e *testEnv) addOffDay(date, reason string) {
	id := nextMockID("off")
	e.offDays.days[id] = &model.OffDay{OffDayID: id, Date: mustDate(date), Reason: reason}
}

func mustDate(s string) time.Time {
	t, err := parseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// karachi 测试统一使用的账务时区
func karachi() *time.Location {
	loc, err := time.LoadLocation("Asia/Karachi")
	if err != nil {
		return time.FixedZone("PKT", 5*3600)
	}
	return loc
}

func at(date string, hour, minute int) time.Time {
	d := mustDate(date)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, karachi())
}

func statusPtr(s model.AttendanceStatus) *model.AttendanceStatus { return &s }
