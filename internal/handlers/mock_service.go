package handlers

import (
	"context"
	"net/http"
	"time"

	"heatzone"
	"heatzone/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockProfile struct {
	state    heatzone.ProfileState
	stateErr error

	modeErr  error
	paintErr error
	setErr   error

	lastMode     int
	lastDay      int
	lastSlot     int
	lastIndex    int
	lastValue    float64
	lastActive   bool
	setCalls     int
	beginCalls   int
	moveCalls    int
	endCalls     int
	cancelCalls  int
	setActiveSet bool
}

func (m *mockProfile) State(ctx context.Context) (heatzone.ProfileState, error) {
	return m.state, m.stateErr
}
func (m *mockProfile) SelectMode(ctx context.Context, mode int) error {
	m.lastMode = mode
	return m.modeErr
}
func (m *mockProfile) BeginPaint(ctx context.Context, day, slot int) error {
	m.beginCalls++
	m.lastDay, m.lastSlot = day, slot
	return m.paintErr
}
func (m *mockProfile) MovePaint(ctx context.Context, day, slot int) error {
	m.moveCalls++
	m.lastDay, m.lastSlot = day, slot
	return m.paintErr
}
func (m *mockProfile) EndPaint(ctx context.Context) error {
	m.endCalls++
	return m.paintErr
}
func (m *mockProfile) CancelPaint(ctx context.Context) error {
	m.cancelCalls++
	return m.paintErr
}
func (m *mockProfile) SetSetpoint(ctx context.Context, index int, value float64) error {
	m.setCalls++
	m.lastIndex, m.lastValue = index, value
	return m.setErr
}
func (m *mockProfile) SetAwayTemp(ctx context.Context, value float64) error {
	m.lastValue = value
	return m.setErr
}
func (m *mockProfile) SetHolidayTemp(ctx context.Context, value float64) error {
	m.lastValue = value
	return m.setErr
}
func (m *mockProfile) SetActive(ctx context.Context, active bool) error {
	m.lastActive = active
	m.setActiveSet = true
	return m.setErr
}

type mockSync struct {
	saveErr   error
	status    heatzone.SyncStatus
	statusErr error
	saveCalls int
	handled   []string
}

func (m *mockSync) HandleMessage(field string, payload []byte) {
	m.handled = append(m.handled, field)
}
func (m *mockSync) Save(ctx context.Context) error {
	m.saveCalls++
	return m.saveErr
}
func (m *mockSync) Status(ctx context.Context) (heatzone.SyncStatus, error) {
	return m.status, m.statusErr
}

type mockEventLog struct {
	resp     []heatzone.ProfileEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]heatzone.ProfileEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
