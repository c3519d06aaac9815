package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/imagegenhub/server/internal/config"
	"github.com/imagegenhub/server/internal/domain"
	"github.com/imagegenhub/server/internal/logger"
	"github.com/imagegenhub/server/internal/repository"
	"github.com/imagegenhub/server/internal/service"
	"github.com/imagegenhub/server/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	memeRepo := repository.NewMemeRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	viewRepo := repository.NewViewRepository(db)

	store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	log := logger.Default()
	auth := service.NewAuthService(userRepo, log, &service.AuthConfig{JWTSecret: "test-secret"})
	views := service.NewViewService(viewRepo, memeRepo, log)
	memes := service.NewMemeService(memeRepo, voteRepo, commentRepo, views, log)

	return SetupRouter(&Services{
		Auth:     auth,
		Memes:    memes,
		Votes:    service.NewVoteService(db, memeRepo, log),
		Comments: service.NewCommentService(commentRepo, memeRepo, userRepo, log),
		Uploads:  service.NewUploadService(store, 0, log),
	}, &config.ServerConfig{Mode: "test"}, "")
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := map[string]interface{}{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

func registerUser(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()

	w, resp := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatal("register response missing token")
	}
	return token
}

func createMeme(t *testing.T, r *gin.Engine, token string) string {
	t.Helper()

	w, resp := doJSON(t, r, http.MethodPost, "/api/memes", token, gin.H{
		"imageUrl": "http://localhost:8080/uploads/memes/test.png",
		"topText":  "hello",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create meme returned %d: %s", w.Code, w.Body.String())
	}
	meme, _ := resp["meme"].(map[string]interface{})
	id, _ := meme["id"].(string)
	if id == "" {
		t.Fatal("create response missing meme id")
	}
	return id
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health returned %d, want 200", w.Code)
	}
	if resp["status"] != "ok" || resp["service"] != "imagegenhub" {
		t.Errorf("health body = %v, want status ok and service name", resp)
	}
}

func TestAuthFlow(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice")

	w, resp := doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me returned %d: %s", w.Code, w.Body.String())
	}
	user, _ := resp["user"].(map[string]interface{})
	if user["username"] != "alice" {
		t.Errorf("me username = %v, want alice", user["username"])
	}

	w, resp = doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("me without token returned %d, want 401", w.Code)
	}
	if resp["message"] != "No token, authorization denied" {
		t.Errorf("message = %v", resp["message"])
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/auth/me", "garbage", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("me with bad token returned %d, want 401", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("login with wrong password returned %d, want 401", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"email":    "alice2@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register returned %d, want 409", w.Code)
	}
}

func TestVoteToggleFlow(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "voter")
	memeID := createMeme(t, r, token)
	path := "/api/votes/" + memeID

	w, resp := doJSON(t, r, http.MethodPost, path, token, gin.H{"voteType": "upvote"})
	if w.Code != http.StatusCreated {
		t.Fatalf("first vote returned %d: %s", w.Code, w.Body.String())
	}
	if resp["message"] != "Vote recorded" {
		t.Errorf("message = %v, want Vote recorded", resp["message"])
	}

	w, resp = doJSON(t, r, http.MethodPost, path, token, gin.H{"voteType": "downvote"})
	if w.Code != http.StatusOK {
		t.Fatalf("flipped vote returned %d: %s", w.Code, w.Body.String())
	}
	if resp["message"] != "Vote updated" {
		t.Errorf("message = %v, want Vote updated", resp["message"])
	}

	w, resp = doJSON(t, r, http.MethodPost, path, token, gin.H{"voteType": "downvote"})
	if w.Code != http.StatusOK {
		t.Fatalf("repeated vote returned %d: %s", w.Code, w.Body.String())
	}
	if resp["message"] != "Vote removed" {
		t.Errorf("message = %v, want Vote removed", resp["message"])
	}

	w, _ = doJSON(t, r, http.MethodPost, path, token, gin.H{"voteType": "sideways"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid vote type returned %d, want 400", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, path, "", gin.H{"voteType": "upvote"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous vote returned %d, want 401", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/votes/no-such-meme", token, gin.H{"voteType": "upvote"})
	if w.Code != http.StatusNotFound {
		t.Errorf("vote on missing meme returned %d, want 404", w.Code)
	}
}

func TestListShowsCallerVote(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "lister")
	memeID := createMeme(t, r, token)

	if w, _ := doJSON(t, r, http.MethodPost, "/api/votes/"+memeID, token, gin.H{"voteType": "upvote"}); w.Code != http.StatusCreated {
		t.Fatalf("vote returned %d", w.Code)
	}

	// Authenticated listing carries the caller's own vote.
	w, resp := doJSON(t, r, http.MethodGet, "/api/memes", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list returned %d: %s", w.Code, w.Body.String())
	}
	memes, _ := resp["memes"].([]interface{})
	if len(memes) != 1 {
		t.Fatalf("got %d memes, want 1", len(memes))
	}
	entry := memes[0].(map[string]interface{})
	if entry["userVote"] != "upvote" {
		t.Errorf("userVote = %v, want upvote", entry["userVote"])
	}
	if entry["voteCount"] != float64(1) {
		t.Errorf("voteCount = %v, want 1", entry["voteCount"])
	}

	// Anonymous listing shows a null userVote for the same meme.
	w, resp = doJSON(t, r, http.MethodGet, "/api/memes", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous list returned %d", w.Code)
	}
	memes, _ = resp["memes"].([]interface{})
	entry = memes[0].(map[string]interface{})
	if entry["userVote"] != nil {
		t.Errorf("anonymous userVote = %v, want null", entry["userVote"])
	}
	if resp["totalMemes"] != float64(1) || resp["currentPage"] != float64(1) {
		t.Errorf("pagination = %v/%v, want 1/1", resp["totalMemes"], resp["currentPage"])
	}
}

func TestListResponseUsesCamelCaseKeys(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "client")
	createMeme(t, r, token)

	req := httptest.NewRequest(http.MethodGet, "/api/memes", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list returned %d: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	for _, key := range []string{
		`"totalPages"`, `"currentPage"`, `"totalMemes"`,
		`"voteCount"`, `"userVote"`, `"commentCount"`,
		`"imageUrl"`, `"topText"`, `"creatorId"`, `"createdAt"`,
	} {
		if !strings.Contains(body, key) {
			t.Errorf("response body missing key %s", key)
		}
	}
	for _, key := range []string{
		`"total_pages"`, `"current_page"`, `"total_memes"`,
		`"vote_count"`, `"user_vote"`, `"image_url"`,
	} {
		if strings.Contains(body, key) {
			t.Errorf("response body carries legacy key %s", key)
		}
	}
}

func TestMemeDetailRecordsView(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "owner")
	memeID := createMeme(t, r, token)

	w, resp := doJSON(t, r, http.MethodGet, "/api/memes/"+memeID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("detail returned %d: %s", w.Code, w.Body.String())
	}
	meme, _ := resp["meme"].(map[string]interface{})
	if meme["views"] != float64(1) {
		t.Errorf("views = %v, want 1 after first visit", meme["views"])
	}

	// A repeat visit by the same user does not count again.
	w, resp = doJSON(t, r, http.MethodGet, "/api/memes/"+memeID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("detail returned %d", w.Code)
	}
	meme, _ = resp["meme"].(map[string]interface{})
	if meme["views"] != float64(1) {
		t.Errorf("views = %v, want 1 after repeat visit", meme["views"])
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/memes/no-such-meme", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing meme returned %d, want 404", w.Code)
	}
}

func TestMemeOwnershipOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	owner := registerUser(t, r, "owner")
	stranger := registerUser(t, r, "stranger")
	memeID := createMeme(t, r, owner)

	w, _ := doJSON(t, r, http.MethodPut, "/api/memes/"+memeID, stranger, gin.H{"topText": "hijack"})
	if w.Code != http.StatusForbidden {
		t.Errorf("update by stranger returned %d, want 403", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodDelete, "/api/memes/"+memeID, stranger, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("delete by stranger returned %d, want 403", w.Code)
	}

	w, resp := doJSON(t, r, http.MethodPut, "/api/memes/"+memeID, owner, gin.H{"topText": "mine"})
	if w.Code != http.StatusOK {
		t.Fatalf("update by owner returned %d: %s", w.Code, w.Body.String())
	}
	meme, _ := resp["meme"].(map[string]interface{})
	if meme["topText"] != "mine" {
		t.Errorf("topText = %v, want mine", meme["topText"])
	}

	w, _ = doJSON(t, r, http.MethodDelete, "/api/memes/"+memeID, owner, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete by owner returned %d, want 200", w.Code)
	}
}

func TestCommentFlow(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "chatty")
	memeID := createMeme(t, r, token)
	path := "/api/comments/" + memeID

	w, resp := doJSON(t, r, http.MethodPost, path, token, gin.H{"content": "great one"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add comment returned %d: %s", w.Code, w.Body.String())
	}
	comment, _ := resp["comment"].(map[string]interface{})
	commentID, _ := comment["id"].(string)
	if commentID == "" {
		t.Fatal("comment response missing id")
	}

	w, _ = doJSON(t, r, http.MethodPost, path, token, gin.H{"content": strings.Repeat("x", domain.MaxCommentLength+1)})
	if w.Code != http.StatusBadRequest {
		t.Errorf("over-length comment returned %d, want 400", w.Code)
	}

	w, resp = doJSON(t, r, http.MethodGet, path, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list comments returned %d", w.Code)
	}
	comments, _ := resp["comments"].([]interface{})
	if len(comments) != 1 {
		t.Errorf("got %d comments, want 1", len(comments))
	}

	stranger := registerUser(t, r, "stranger")
	w, _ = doJSON(t, r, http.MethodDelete, "/api/comments/"+commentID, stranger, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("delete by stranger returned %d, want 403", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodDelete, "/api/comments/"+commentID, token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete by author returned %d, want 200", w.Code)
	}
}

func TestTrendingAndFlag(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "poster")

	w, resp := doJSON(t, r, http.MethodGet, "/api/memes/trending/day", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("trending returned %d", w.Code)
	}
	if resp["meme"] != nil {
		t.Errorf("trending meme = %v, want null with no memes", resp["meme"])
	}

	memeID := createMeme(t, r, token)
	other := registerUser(t, r, "fan")
	if w, _ := doJSON(t, r, http.MethodPost, "/api/votes/"+memeID, other, gin.H{"voteType": "upvote"}); w.Code != http.StatusCreated {
		t.Fatalf("vote returned %d", w.Code)
	}

	w, resp = doJSON(t, r, http.MethodGet, "/api/memes/trending/day", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("trending returned %d", w.Code)
	}
	meme, _ := resp["meme"].(map[string]interface{})
	if meme == nil || meme["id"] != memeID {
		t.Errorf("trending meme = %v, want %s", resp["meme"], memeID)
	}

	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/memes/%s/flag", memeID), token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("flag returned %d, want 200", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodPost, "/api/memes/no-such-meme/flag", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("flag on missing meme returned %d, want 404", w.Code)
	}
}

func TestUploadEndpoint(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "uploader")

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "pic.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(pngBuf.Bytes()); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/memes/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("upload returned %d: %s", w.Code, w.Body.String())
	}
	resp := map[string]interface{}{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	url, _ := resp["imageUrl"].(string)
	if !strings.HasPrefix(url, "http://localhost:8080/uploads/memes/") {
		t.Errorf("imageUrl = %q, want served under /uploads/memes/", url)
	}
	if resp["width"] != float64(8) || resp["height"] != float64(8) {
		t.Errorf("dimensions = %vx%v, want 8x8", resp["width"], resp["height"])
	}

	// Missing file part.
	req = httptest.NewRequest(http.MethodPost, "/api/memes/upload", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("upload without file returned %d, want 400", w.Code)
	}
}

func TestDashboardRequiresAuth(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "creator")
	createMeme(t, r, token)

	w, _ := doJSON(t, r, http.MethodGet, "/api/memes/user/dashboard", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous dashboard returned %d, want 401", w.Code)
	}

	w, resp := doJSON(t, r, http.MethodGet, "/api/memes/user/dashboard", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard returned %d: %s", w.Code, w.Body.String())
	}
	memes, _ := resp["memes"].([]interface{})
	if len(memes) != 1 {
		t.Errorf("dashboard memes = %d, want 1", len(memes))
	}
}
