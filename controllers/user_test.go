package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	assert.NoError(t, err)

	userRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "member_since"}).
			AddRow("user-1", "ana@example.com", string(hash), "Ana", time.Now())
	}

	t.Run("Valid credentials return a token", func(t *testing.T) {
		gormDB, mock := mockGormDB(t)
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
			WithArgs("ana@example.com", 1).
			WillReturnRows(userRows())

		router := gin.New()
		router.POST("/login", Login(gormDB))

		w := postForm(router, "/login", url.Values{
			"email":    {"ana@example.com"},
			"password": {"correct-horse"},
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Token  string `json:"token"`
			UserID string `json:"user_id"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, "user-1", response.UserID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		gormDB, mock := mockGormDB(t)
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
			WithArgs("ana@example.com", 1).
			WillReturnRows(userRows())

		router := gin.New()
		router.POST("/login", Login(gormDB))

		w := postForm(router, "/login", url.Values{
			"email":    {"ana@example.com"},
			"password": {"wrong"},
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Empty parameters", func(t *testing.T) {
		gormDB, _ := mockGormDB(t)

		router := gin.New()
		router.POST("/login", Login(gormDB))

		w := postForm(router, "/login", url.Values{"email": {" "}, "password": {""}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
