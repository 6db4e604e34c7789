package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/models"
)

// fakeUserStore 记录入库调用的名册桩
type fakeUserStore struct {
	saved   []models.User
	saveErr error
}

func (f *fakeUserStore) GetAllUsers() ([]models.User, error) { return f.saved, nil }
func (f *fakeUserStore) GetUserByID(id string) (*models.User, error) {
	return nil, fmt.Errorf("not found")
}
func (f *fakeUserStore) UpdateUserStatus(id, status string) error   { return nil }
func (f *fakeUserStore) ReassignUserID(oldID, newID string) error   { return nil }
func (f *fakeUserStore) DeleteUser(id string) (*models.User, error) { return nil, nil }
func (f *fakeUserStore) BulkDeleteUsers(ids []string) (int64, []string, error) {
	return 0, nil, nil
}

func (f *fakeUserStore) SaveUser(user *models.User) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved = append(f.saved, *user)
	return OperationInsert, nil
}

// fakeFanout 总是报告一台设备成功的扇出桩
type fakeFanout struct {
	pushed []string
}

func (f *fakeFanout) AddUserToAllDevices(user *models.User) []models.SyncResult {
	f.pushed = append(f.pushed, user.ID)
	return []models.SyncResult{{Device: "10.0.0.1", Result: models.ResultOK, Message: "success"}}
}

func (f *fakeFanout) AddUserWithRetry(user *models.User) ([]models.SyncResult, string) {
	return f.AddUserToAllDevices(user), user.ID
}

func (f *fakeFanout) DeleteUserFromAllDevices(idno string) []models.SyncResult {
	return []models.SyncResult{{Device: "10.0.0.1", Result: models.ResultOK}}
}

func (f *fakeFanout) QueryUserDetail(idno string) []models.SyncResult { return nil }
func (f *fakeFanout) MatchFace(picData string) []models.SyncResult    { return nil }

// fakePhotoStore 不落盘的照片桩
type fakePhotoStore struct{}

func (f *fakePhotoStore) SavePhoto(id, photoBase64 string) (string, error) {
	return "uploads/" + id + ".jpg", nil
}
func (f *fakePhotoStore) DeletePhoto(relativePath string) error          { return nil }
func (f *fakePhotoStore) LoadBase64(relativePath string) (string, error) { return "", nil }

func newTestBackoffice(upstreamURL string, users *fakeUserStore, fanout *fakeFanout) *BackofficeService {
	return &BackofficeService{
		Config: &config.Config{
			BackofficeAPIURL: upstreamURL,
			APIEmail:         "ops@example.com",
			APIPassword:      "secret",
			StoreID:          "1",
		},
		HTTP:   &http.Client{Timeout: 5 * time.Second},
		Users:  users,
		Sync:   fanout,
		Photos: &fakePhotoStore{},
	}
}

func TestExtractToken(t *testing.T) {
	if got := ExtractToken("123|abcdef"); got != "abcdef" {
		t.Fatalf("expected segment after pipe, got %q", got)
	}
	if got := ExtractToken("plain-token"); got != "plain-token" {
		t.Fatalf("token without pipe must pass through, got %q", got)
	}
	if got := ExtractToken("42| padded "); got != "padded" {
		t.Fatalf("token must be trimmed, got %q", got)
	}
}

func TestLoginExtractsUsableToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("email") != "ops@example.com" {
			t.Errorf("missing email query parameter")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"token": "7|usable-token"},
		})
	}))
	defer srv.Close()

	svc := newTestBackoffice(srv.URL, &fakeUserStore{}, &fakeFanout{})
	token, err := svc.Login()
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token != "usable-token" {
		t.Fatalf("expected usable segment, got %q", token)
	}
}

func TestPerformSyncFatalOnAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := newTestBackoffice(srv.URL, &fakeUserStore{}, &fakeFanout{})
	_, err := svc.PerformSync()
	if err == nil {
		t.Fatal("auth failure must be fatal for the whole run")
	}
	if err.Error() != "Sync failed. Check logs for details." {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestPerformSyncNoPendingOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]string{"token": "1|tok"},
			})
		case "/turnstile-order-details":
			json.NewEncoder(w).Encode(map[string]interface{}{"data": []OrderDetail{}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := newTestBackoffice(srv.URL, &fakeUserStore{}, &fakeFanout{})
	report, err := svc.PerformSync()
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if report.Total != 0 || report.Message != "No new users to sync." {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestPerformSyncIsolatesImageFailures(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			if r.Method != http.MethodPost {
				t.Errorf("login must be a POST, got %s", r.Method)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]string{"token": "1|tok"},
			})
		case "/turnstile-order-details":
			if r.Header.Get("Authorization") != "Bearer tok" {
				t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []OrderDetail{
					{OrderDetailID: 1001, Image: srvURL + "/images/good.jpg"},
					{OrderDetailID: 1002, Image: srvURL + "/images/missing.jpg"},
				},
			})
		case "/images/good.jpg":
			w.Write([]byte("jpegdata"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	users := &fakeUserStore{}
	fanout := &fakeFanout{}
	svc := newTestBackoffice(srv.URL, users, fanout)

	report, err := svc.PerformSync()
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	// 图片下载失败只降级该条为无照片，两条订单都必须入库并下发
	if report.Total != 2 || report.Succeeded != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(users.saved) != 2 {
		t.Fatalf("expected 2 users persisted, got %d", len(users.saved))
	}
	if len(fanout.pushed) != 2 {
		t.Fatalf("expected 2 users pushed to devices, got %d", len(fanout.pushed))
	}

	if users.saved[0].Base64 == "" {
		t.Fatal("first order had a downloadable image and must carry base64 data")
	}
	if users.saved[1].Base64 != "" || users.saved[1].Photo != "" {
		t.Fatal("second order must degrade to no photo on download failure")
	}

	for _, u := range users.saved {
		if len(u.ID) != 12 {
			t.Fatalf("generated local identity must be 12 digits, got %q", u.ID)
		}
		if u.Status != string(models.UserStatusPaid) {
			t.Fatalf("materialized user must be Paid, got %q", u.Status)
		}
	}
}

func TestPerformSyncReusesCachedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			t.Error("cached token must be reused without a fresh login")
		case "/turnstile-order-details":
			if r.Header.Get("Authorization") != "Bearer cached-tok" {
				t.Errorf("expected the cached bearer token, got %q", r.Header.Get("Authorization"))
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"data": []OrderDetail{}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := newTestBackoffice(srv.URL, &fakeUserStore{}, &fakeFanout{})
	cache := newFakeCache()
	cache.token = "cached-tok"
	svc.Cache = cache

	if _, err := svc.PerformSync(); err != nil {
		t.Fatalf("sync with cached token failed: %v", err)
	}
	if cache.tokenReads != 1 {
		t.Fatalf("expected one cache read, got %d", cache.tokenReads)
	}
}

func TestPerformSyncRelogsInWhenCachedTokenStale(t *testing.T) {
	var logins int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			logins++
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]string{"token": "9|fresh-tok"},
			})
		case "/turnstile-order-details":
			// 过期的缓存令牌被上游拒绝，重新登录后的令牌放行
			if r.Header.Get("Authorization") != "Bearer fresh-tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"data": []OrderDetail{}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := newTestBackoffice(srv.URL, &fakeUserStore{}, &fakeFanout{})
	cache := newFakeCache()
	cache.token = "stale-tok"
	svc.Cache = cache

	report, err := svc.PerformSync()
	if err != nil {
		t.Fatalf("stale cached token must trigger one re-login, not a failure: %v", err)
	}
	if report.Message != "No new users to sync." {
		t.Fatalf("unexpected report: %+v", report)
	}
	if logins != 1 {
		t.Fatalf("expected exactly one re-login, got %d", logins)
	}
	if cache.loginCached != "fresh-tok" {
		t.Fatalf("re-login must cache the fresh token, got %q", cache.loginCached)
	}
}

func TestPerformSyncIsolatesDBFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]string{"token": "1|tok"},
			})
		case "/turnstile-order-details":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []OrderDetail{{OrderDetailID: 1001}, {OrderDetailID: 1002}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	users := &fakeUserStore{saveErr: fmt.Errorf("disk full")}
	svc := newTestBackoffice(srv.URL, users, &fakeFanout{})

	report, err := svc.PerformSync()
	if err != nil {
		t.Fatalf("item-level failures must not fail the run: %v", err)
	}
	if report.Failed != 2 || report.Succeeded != 0 {
		t.Fatalf("expected all items failed, got %+v", report)
	}
	if len(report.Items) != 2 {
		t.Fatalf("expected per-item results, got %d", len(report.Items))
	}
}
