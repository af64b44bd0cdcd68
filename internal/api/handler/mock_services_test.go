package handler

import (
	"bytes"
	"context"
	"io"
	"time"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/service"
)

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	logoutErr   error
	loggedOut   string
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.loggedOut = jti
	return m.logoutErr
}

// ── Mock UserService ──

type mockUserService struct {
	result    *dto.UserResponse
	list      []dto.UserResponse
	err       error
	requested string
}

func (m *mockUserService) Create(_ context.Context, _ *dto.CreateUserRequest, _ string) (*dto.UserResponse, error) {
	return m.result, m.err
}
func (m *mockUserService) GetByID(_ context.Context, id string) (*dto.UserResponse, error) {
	m.requested = id
	return m.result, m.err
}
func (m *mockUserService) List(_ context.Context) ([]dto.UserResponse, error) {
	return m.list, m.err
}
func (m *mockUserService) SetStatus(_ context.Context, id string, _ *dto.SetUserStatusRequest, _ string) (*dto.UserResponse, error) {
	m.requested = id
	return m.result, m.err
}

// ── Mock SettingService ──

type mockSettingService struct {
	current     []dto.SettingResponse
	updateResp  *dto.UpdateSettingResponse
	history     []dto.SettingVersionResponse
	repriceResp *dto.RepriceResponse
	err         error
	lastUpdate  *dto.UpdateSettingRequest
}

func (m *mockSettingService) GetCurrentAll(_ context.Context) ([]dto.SettingResponse, error) {
	return m.current, m.err
}
func (m *mockSettingService) GetCurrentValue(_ context.Context, _ string) (string, error) {
	return "", m.err
}
func (m *mockSettingService) GetValueAsOf(_ context.Context, _ string, _ time.Time) (string, error) {
	return "", m.err
}
func (m *mockSettingService) SetCurrentValue(_ context.Context, req *dto.UpdateSettingRequest, _ string) (*dto.UpdateSettingResponse, error) {
	m.lastUpdate = req
	return m.updateResp, m.err
}
func (m *mockSettingService) History(_ context.Context, _ string) ([]dto.SettingVersionResponse, error) {
	return m.history, m.err
}
func (m *mockSettingService) Timeline(_ context.Context) (*service.Timeline, error) {
	return nil, m.err
}
func (m *mockSettingService) ApplyGuestPrice(_ context.Context, _ string) (*dto.RepriceResponse, error) {
	return m.repriceResp, m.err
}

// ── Mock DuesService ──

type mockDuesService struct {
	userResult   *dto.UserDuesResponse
	report       *dto.ReportResponse
	err          error
	reconciledID string
	start, end   time.Time
}

func (m *mockDuesService) Reconcile(_ context.Context, userID string, start, end time.Time) (*dto.UserDuesResponse, error) {
	m.reconciledID, m.start, m.end = userID, start, end
	return m.userResult, m.err
}
func (m *mockDuesService) Aggregate(_ context.Context, start, end time.Time) (*dto.ReportResponse, error) {
	m.start, m.end = start, end
	return m.report, m.err
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	result   *dto.AttendanceResponse
	list     []dto.AttendanceResponse
	err      error
	listedID string
	markedBy string
}

func (m *mockAttendanceService) Mark(_ context.Context, userID string, _ *dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error) {
	m.markedBy = userID
	return m.result, m.err
}
func (m *mockAttendanceService) SetOpen(_ context.Context, _ *dto.SetOpenRequest, _ string) (*dto.AttendanceResponse, error) {
	return m.result, m.err
}
func (m *mockAttendanceService) List(_ context.Context, userID string, _, _ time.Time) ([]dto.AttendanceResponse, error) {
	m.listedID = userID
	return m.list, m.err
}

// ── Mock GuestService ──

type mockGuestService struct {
	result    *dto.GuestResponse
	list      []dto.GuestResponse
	err       error
	inviterID string
	listedID  string
}

func (m *mockGuestService) Create(_ context.Context, _ *dto.CreateGuestRequest, inviterID string) (*dto.GuestResponse, error) {
	m.inviterID = inviterID
	return m.result, m.err
}
func (m *mockGuestService) List(_ context.Context, userID string, _, _ time.Time) ([]dto.GuestResponse, error) {
	m.listedID = userID
	return m.list, m.err
}

// ── Mock TransactionService ──

type mockTransactionService struct {
	result  *dto.TransactionResponse
	list    []dto.TransactionResponse
	total   int64
	err     error
	lastReq *dto.TransactionListRequest
}

func (m *mockTransactionService) Record(_ context.Context, _ *dto.CreateTransactionRequest, _ string) (*dto.TransactionResponse, error) {
	return m.result, m.err
}
func (m *mockTransactionService) List(_ context.Context, req *dto.TransactionListRequest) ([]dto.TransactionResponse, int64, error) {
	m.lastReq = req
	return m.list, m.total, m.err
}

// ── Mock OffDayService ──

type mockOffDayService struct {
	result     *dto.OffDayResponse
	list       []dto.OffDayResponse
	importResp *dto.ImportOffDaysResponse
	err        error
	uploaded   string
}

func (m *mockOffDayService) Create(_ context.Context, _ *dto.CreateOffDayRequest, _ string) (*dto.OffDayResponse, error) {
	return m.result, m.err
}
func (m *mockOffDayService) List(_ context.Context, _, _ time.Time) ([]dto.OffDayResponse, error) {
	return m.list, m.err
}
func (m *mockOffDayService) Delete(_ context.Context, _ string) error {
	return m.err
}
func (m *mockOffDayService) ImportICS(_ context.Context, reader io.Reader, _ string) (*dto.ImportOffDaysResponse, error) {
	b, _ := io.ReadAll(reader)
	m.uploaded = string(b)
	return m.importResp, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportReport(_ context.Context, _, _ time.Time) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
