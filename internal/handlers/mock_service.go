package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"beehive_monitor/internal/models"
	"beehive_monitor/internal/service"
)

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error
	ttl           time.Duration

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

func (m *mockAuth) EnsureUser(context.Context, string, string) (bool, error) { return false, nil }

func (m *mockAuth) SessionTTL() time.Duration {
	if m.ttl == 0 {
		return 15 * time.Minute
	}
	return m.ttl
}

type mockIngestion struct {
	snap      models.Snapshot
	alert     models.AlertState
	result    models.IngestResult
	ingestErr error
	ingested  []models.Sample
}

func (m *mockIngestion) Ingest(_ context.Context, s models.Sample) (models.IngestResult, error) {
	if m.ingestErr != nil {
		return models.IngestResult{}, m.ingestErr
	}
	m.ingested = append(m.ingested, s)
	return m.result, nil
}

func (m *mockIngestion) Snapshot() models.Snapshot                          { return m.snap }
func (m *mockIngestion) Alert() models.AlertState                           { return m.alert }
func (m *mockIngestion) LastFlush() time.Time                               { return m.snap.LastFlushAt }
func (m *mockIngestion) Drain(context.Context) (*models.WindowAverage, bool) { return nil, false }
func (m *mockIngestion) WatchAge(context.Context)                           {}

type mockSensor struct {
	snap  models.Snapshot
	polls int
}

func (m *mockSensor) Poll(context.Context) models.Snapshot {
	m.polls++
	return m.snap
}

type mockHistory struct {
	day      models.DayHistory
	extremes models.Extremes
	err      error
	lastDate string
}

func (m *mockHistory) ByDate(_ context.Context, date string) (models.DayHistory, error) {
	m.lastDate = date
	return m.day, m.err
}

func (m *mockHistory) Extremes(context.Context) (models.Extremes, error) {
	return m.extremes, m.err
}

type mockReports struct {
	body     string
	err      error
	lastDate string
}

func (m *mockReports) PDF(_ context.Context, date string, w io.Writer) error {
	m.lastDate = date
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, "%PDF-"+m.body)
	return err
}

func (m *mockReports) Excel(_ context.Context, date string, w io.Writer) error {
	m.lastDate = date
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, "PK"+m.body)
	return err
}

type mockEventLog struct {
	resp     []models.HiveEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.HiveEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(s, nil, opts...).InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request, token string) *http.Request {
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
