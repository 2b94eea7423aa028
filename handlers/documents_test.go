package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/coedit/coedit/internal/document"
	"github.com/coedit/coedit/internal/document/repository"
	"github.com/coedit/coedit/internal/document/service"
	"github.com/coedit/coedit/internal/models"
	"github.com/coedit/coedit/internal/tokens"
	"github.com/coedit/coedit/internal/users"
	"github.com/coedit/coedit/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type docTestEnv struct {
	r        *gin.Engine
	usersSvc *users.Service
}

func newDocTestEnv(t *testing.T) *docTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	usersSvc := users.NewService(users.NewMemoryUserRepository())
	docSvc := service.NewService(repository.NewMemoryRepo(), usersSvc)

	r := gin.New()
	api := r.Group("/api")
	auth := middleware.AuthMiddleware(tokens.NewVerifier(cfg.JWT.Secret), nil)
	NewDocumentHandler(docSvc, nil).Register(api, auth)
	return &docTestEnv{r: r, usersSvc: usersSvc}
}

// registerUser creates an account and returns the user and a bearer header.
func (e *docTestEnv) registerUser(t *testing.T, email string) (*models.User, map[string]string) {
	t.Helper()
	u, err := e.usersSvc.Register(t.Context(), email, email, "pw123456")
	require.NoError(t, err)
	tok, err := tokens.GenerateAccessToken(testConfig(), u, testConfig().JWT.AccessTokenTTL)
	require.NoError(t, err)
	return u, map[string]string{"Authorization": "Bearer " + tok}
}

func decodeDoc(t *testing.T, body []byte) *document.Document {
	t.Helper()
	var d document.Document
	require.NoError(t, json.Unmarshal(body, &d))
	return &d
}

func TestDocuments_RequireAuth(t *testing.T) {
	env := newDocTestEnv(t)

	w := doJSON(t, env.r, "GET", "/api/documents", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env.r, "POST", "/api/documents", gin.H{"title": "x"}, map[string]string{"Authorization": "Bearer garbage"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDocuments_CRUDAndSharing(t *testing.T) {
	env := newDocTestEnv(t)
	alice, aliceHdr := env.registerUser(t, "alice@example.com")
	bob, bobHdr := env.registerUser(t, "bob@example.com")

	// create
	w := doJSON(t, env.r, "POST", "/api/documents", gin.H{"title": "Notes", "content": "hello"}, aliceHdr)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeDoc(t, w.Body.Bytes())
	require.Equal(t, alice.ID, created.Owner)
	require.Equal(t, 1, created.Version)

	// empty title rejected
	w = doJSON(t, env.r, "POST", "/api/documents", gin.H{"title": "   "}, aliceHdr)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// alice sees it, bob does not
	w = doJSON(t, env.r, "GET", "/api/documents", nil, aliceHdr)
	require.Equal(t, http.StatusOK, w.Code)
	var list []*document.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w = doJSON(t, env.r, "GET", "/api/documents", nil, bobHdr)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())

	docPath := "/api/documents/" + created.ID

	// bob cannot tell the document exists
	w = doJSON(t, env.r, "GET", docPath, nil, bobHdr)
	require.Equal(t, http.StatusNotFound, w.Code)

	// share with bob
	w = doJSON(t, env.r, "POST", docPath+"/collaborators", gin.H{"collaboratorId": bob.ID}, aliceHdr)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, decodeDoc(t, w.Body.Bytes()).Collaborators, bob.ID)

	// now bob can read and edit
	w = doJSON(t, env.r, "GET", docPath, nil, bobHdr)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.r, "PATCH", docPath, gin.H{"content": "hello world"}, bobHdr)
	require.Equal(t, http.StatusOK, w.Code)
	patched := decodeDoc(t, w.Body.Bytes())
	require.Equal(t, 2, patched.Version)
	require.Equal(t, "hello world", patched.Content)
	require.Equal(t, "Notes", patched.Title)

	// but bob cannot delete
	w = doJSON(t, env.r, "DELETE", docPath, nil, bobHdr)
	require.Equal(t, http.StatusNotFound, w.Code)

	// the owner can, and gets the deleted document back
	w = doJSON(t, env.r, "DELETE", docPath, nil, aliceHdr)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, created.ID, decodeDoc(t, w.Body.Bytes()).ID)

	// it is gone afterwards
	w = doJSON(t, env.r, "GET", docPath, nil, aliceHdr)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocuments_PatchValidation(t *testing.T) {
	env := newDocTestEnv(t)
	_, hdr := env.registerUser(t, "carol@example.com")

	w := doJSON(t, env.r, "POST", "/api/documents", gin.H{"title": "Draft"}, hdr)
	require.Equal(t, http.StatusCreated, w.Code)
	d := decodeDoc(t, w.Body.Bytes())

	// blank title is a validation error, version stays put
	w = doJSON(t, env.r, "PATCH", fmt.Sprintf("/api/documents/%s", d.ID), gin.H{"title": ""}, hdr)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.r, "GET", fmt.Sprintf("/api/documents/%s", d.ID), nil, hdr)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, decodeDoc(t, w.Body.Bytes()).Version)

	// unknown id
	w = doJSON(t, env.r, "PATCH", "/api/documents/doc_missing", gin.H{"content": "x"}, hdr)
	require.Equal(t, http.StatusNotFound, w.Code)

	// missing collaborator id
	w = doJSON(t, env.r, "POST", fmt.Sprintf("/api/documents/%s/collaborators", d.ID), gin.H{}, hdr)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
