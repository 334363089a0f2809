package handler_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	attendancehandler "agorax/internal/attendance/handler"
	attendanceservice "agorax/internal/attendance/service"
	attendancestore "agorax/internal/attendance/store"
	directoryhandler "agorax/internal/directory/handler"
	directoryservice "agorax/internal/directory/service"
	condominiumstore "agorax/internal/directory/store/condominium"
	ownerstore "agorax/internal/directory/store/owner"
	"agorax/internal/identity"
	meetinghandler "agorax/internal/meeting/handler"
	meetingservice "agorax/internal/meeting/service"
	agendastore "agorax/internal/meeting/store/agenda"
	meetingstore "agorax/internal/meeting/store/meeting"
	"agorax/internal/platform/middleware"
	"agorax/internal/quorum"
	"agorax/internal/voting/codec"
	votinghandler "agorax/internal/voting/handler"
	votingservice "agorax/internal/voting/service"
	votestore "agorax/internal/voting/store"
)

const signingKey = "handler-test-signing-key"

// env assembles the full engine on in-memory stores behind real auth
// middleware, the way cmd/server wires it.
type env struct {
	router http.Handler

	condominiums *condominiumstore.InMemory
	owners       *ownerstore.InMemory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	condominiums := condominiumstore.NewInMemory()
	owners := ownerstore.NewInMemory()
	meetings := meetingstore.NewInMemory()
	agendas := agendastore.NewInMemory()
	presences := attendancestore.NewInMemory()
	votes := votestore.NewInMemory()

	voteCodec, err := codec.NewAESGCM(make([]byte, codec.KeySize))
	require.NoError(t, err)

	directorySvc := directoryservice.New(condominiums, owners, directoryservice.WithLogger(logger))
	meetingSvc := meetingservice.New(meetings, agendas, condominiums, presences, quorum.New(51.0),
		meetingservice.WithLogger(logger))
	attendanceSvc := attendanceservice.New(presences, meetings, owners, votes,
		attendanceservice.WithLogger(logger))
	votingSvc := votingservice.New(votes, agendas, meetings, owners, presences, voteCodec,
		votingservice.WithLogger(logger))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestMetadata)
	r.Use(middleware.RequireAuth(identity.NewVerifier(signingKey), logger))
	directoryhandler.New(directorySvc, logger).Register(r)
	meetinghandler.New(meetingSvc, logger).Register(r)
	attendancehandler.New(attendanceSvc, logger).Register(r)
	votinghandler.New(votingSvc, logger).Register(r)

	return &env{router: r, condominiums: condominiums, owners: owners}
}

func (e *env) token(t *testing.T, ownerID uuid.UUID, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identity.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(signingKey))
	require.NoError(t, err)
	return token
}

func (e *env) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

type idResponse struct {
	ID string `json:"id"`
}

func TestVoteLifecycleThroughHandlers(t *testing.T) {
	e := newEnv(t)
	adminID := uuid.New()
	admin := e.token(t, adminID, identity.RoleAdministrator)

	// Directory setup.
	rec := e.do(t, http.MethodPost, "/condominiums", admin,
		map[string]any{"name": "Edificio Central", "total_coefficient": 100.0})
	require.Equal(t, http.StatusCreated, rec.Code)
	condominiumID := decode[idResponse](t, rec).ID

	rec = e.do(t, http.MethodPost, "/condominiums/"+condominiumID+"/owners", admin,
		map[string]any{"name": "Apt 101", "coefficient": 60.0})
	require.Equal(t, http.StatusCreated, rec.Code)
	ownerID := decode[idResponse](t, rec).ID
	ownerToken := e.token(t, uuid.MustParse(ownerID), "owner")

	// Meeting with one agenda item.
	rec = e.do(t, http.MethodPost, "/condominiums/"+condominiumID+"/meetings", admin,
		map[string]any{"title": "annual assembly", "scheduled_for": time.Now()})
	require.Equal(t, http.StatusCreated, rec.Code)
	meetingID := decode[idResponse](t, rec).ID

	rec = e.do(t, http.MethodPost, "/meetings/"+meetingID+"/agenda-items", admin,
		map[string]any{"title": "budget approval"})
	require.Equal(t, http.StatusCreated, rec.Code)
	itemID := decode[idResponse](t, rec).ID

	// Voting before the item opens is rejected with the precise reason.
	rec = e.do(t, http.MethodPost, "/agenda-items/"+itemID+"/votes", ownerToken,
		map[string]any{"value": "YES"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Owner registers attendance; 60 of 100 clears the 51% gate.
	rec = e.do(t, http.MethodPost, "/meetings/"+meetingID+"/presences", ownerToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/meetings/"+meetingID+"/open", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodPost, "/agenda-items/"+itemID+"/open", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/agenda-items/"+itemID+"/votes", ownerToken,
		map[string]any{"value": "YES"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate vote conflicts.
	rec = e.do(t, http.MethodPost, "/agenda-items/"+itemID+"/votes", ownerToken,
		map[string]any{"value": "NO"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Results stay sealed while the meeting runs.
	rec = e.do(t, http.MethodGet, "/agenda-items/"+itemID+"/votes", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sealed := decode[[]map[string]any](t, rec)
	require.Len(t, sealed, 1)
	require.NotContains(t, sealed[0], "value")

	// Close everything, then the value is readable.
	rec = e.do(t, http.MethodPost, "/agenda-items/"+itemID+"/close", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodPost, "/meetings/"+meetingID+"/close", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/agenda-items/"+itemID+"/votes", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[[]map[string]any](t, rec)
	require.Len(t, results, 1)
	require.Equal(t, "YES", results[0]["value"])
}

func TestInvalidVoteValueRejected(t *testing.T) {
	e := newEnv(t)
	token := e.token(t, uuid.New(), "owner")

	rec := e.do(t, http.MethodPost, "/agenda-items/"+uuid.NewString()+"/votes", token,
		map[string]any{"value": "MAYBE"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/agenda-items/"+uuid.NewString()+"/votes", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLifecycleTransitionsRequireAdmin(t *testing.T) {
	e := newEnv(t)
	owner := e.token(t, uuid.New(), "owner")

	rec := e.do(t, http.MethodPost, "/meetings/"+uuid.NewString()+"/open", owner, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
