package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz_app_backend/metrics"
	"quiz_app_backend/models"
	"quiz_app_backend/quiz"
	"quiz_app_backend/validation"
)

var secret = []byte("routes-test-secret")

// noStore serves default progress and discards writes.
type noStore struct{}

func (noStore) GetProgress(context.Context, int) (quiz.Progress, error) { return quiz.NewProgress(), nil }
func (noStore) SaveProgress(context.Context, int, quiz.Progress) error { return nil }
func (noStore) AppendAttempt(context.Context, quiz.Attempt) error { return nil }

func bearer(t *testing.T, userID int, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := tok.SignedString(secret)
	require.NoError(t, err)
	return "Bearer " + s
}

func TestRouteAccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	bank, err := quiz.DefaultBank()
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		path       string
		userID     int
		role       string
		wantStatus int
	}{
		{"levels are public", http.MethodGet, "/levels", 0, "", http.StatusOK},
		{"metrics are public", http.MethodGet, "/metrics", 0, "", http.StatusOK},
		{"quiz needs a token", http.MethodGet, "/quiz", 0, "", http.StatusUnauthorized},
		{"teachers cannot take quizzes", http.MethodPost, "/quiz/start", 2, models.RoleTeacher, http.StatusForbidden},
		{"students cannot open the dashboard", http.MethodGet, "/admin/summary", 1, models.RoleStudent, http.StatusForbidden},
		{"students see their session", http.MethodGet, "/quiz", 1, models.RoleStudent, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			if tt.userID != 0 {
				mock.ExpectQuery(`SELECT role FROM users WHERE id = \$1`).WithArgs(tt.userID).
					WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow(tt.role))
			}

			r := gin.New()
			SetupRoutes(r, Deps{
				DB:        db,
				JWTSecret: secret,
				Registry:  quiz.NewRegistry(quiz.RegistryConfig{Bank: bank, Store: noStore{}, Dispatcher: quiz.SyncDispatcher{}}),
				Metrics:   metrics.New(),
			})

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{"level":1}`))
			req.Header.Set("Content-Type", "application/json")
			if tt.userID != 0 {
				req.Header.Set("Authorization", bearer(t, tt.userID, tt.role))
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
