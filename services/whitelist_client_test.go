package services

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/models"
)

// newDeviceStub 起一个本地HTTP桩模拟厂商设备，返回客户端、设备IP
// 和最近一次请求体的读取函数
func newDeviceStub(t *testing.T, handler http.HandlerFunc) (InterfaceWhitelistClient, string) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	host, port, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("failed to parse stub address: %v", err)
	}

	cfg := &config.Config{
		DevicePass:      "888888",
		DevicePort:      port,
		ProbeTimeoutMS:  200,
		CommandTimeoutS: 5,
	}
	return NewWhitelistClient(cfg), host
}

func TestAddWhitelistWithoutImageSetsPassAlgo(t *testing.T) {
	var captured map[string]interface{}
	client, ip := newDeviceStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/addDeviceWhiteList" {
			t.Errorf("unexpected endpoint: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(models.VendorResponse{Result: 0, Message: "success"})
	})

	user := &models.User{
		ID:             "990101015678",
		Name:           "Tan Ah Kow",
		StartDate:      "2025-01-01 00:00:00",
		ExpiredDateOut: "2025-01-01 23:59:59",
	}
	result := client.AddWhitelist(ip, user)

	if result.Result != models.ResultOK {
		t.Fatalf("expected success, got %+v", result)
	}
	if captured["pass"] != "888888" {
		t.Fatalf("expected device password in envelope, got %v", captured["pass"])
	}
	if captured["totalnum"] != float64(1) || captured["currentnum"] != float64(1) {
		t.Fatal("totalnum and currentnum must both be 1 for single-entry push")
	}

	data := captured["data"].(map[string]interface{})
	if data["usertype"] != "white" {
		t.Fatalf("expected usertype white, got %v", data["usertype"])
	}
	if data["idno"] != "990101015678" || data["icno"] != "990101015678" {
		t.Fatal("idno and icno must both carry the user identity")
	}
	// 无图片时必须设置passAlgo，且不能携带picData1
	if data["passAlgo"] != true {
		t.Fatal("passAlgo must be set when no image is provided")
	}
	if _, present := data["picData1"]; present {
		t.Fatal("picData1 must be omitted when no image is provided")
	}
}

func TestAddWhitelistWithImageCarriesPicData(t *testing.T) {
	var captured map[string]interface{}
	client, ip := newDeviceStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(models.VendorResponse{Result: 0, Message: "success"})
	})

	client.AddWhitelist(ip, &models.User{ID: "990101015678", Base64: "aGVsbG8="})

	data := captured["data"].(map[string]interface{})
	if data["picData1"] != "aGVsbG8=" {
		t.Fatalf("expected picData1 to carry the image, got %v", data["picData1"])
	}
	if _, present := data["passAlgo"]; present {
		t.Fatal("passAlgo must be omitted when an image is provided")
	}
}

func TestDeleteWhitelistPayload(t *testing.T) {
	var captured map[string]interface{}
	client, ip := newDeviceStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/deleteDeviceWhiteList" {
			t.Errorf("unexpected endpoint: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(models.VendorResponse{Result: 0, Message: "deleted"})
	})

	result := client.DeleteWhitelist(ip, "990101015678")
	if result.Result != models.ResultOK {
		t.Fatalf("expected success, got %+v", result)
	}

	data := captured["data"].(map[string]interface{})
	if data["idno"] != "990101015678" || data["usertype"] != "white" {
		t.Fatalf("unexpected delete payload: %v", data)
	}
}

func TestRebootDevicePayload(t *testing.T) {
	var captured map[string]interface{}
	client, ip := newDeviceStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/setDeviceReboot" {
			t.Errorf("unexpected endpoint: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(models.VendorResponse{Result: 0})
	})

	if _, err := client.RebootDevice(ip); err != nil {
		t.Fatalf("reboot failed: %v", err)
	}

	data := captured["data"].(map[string]interface{})
	if data["type"] != "DelayReboot" || data["value"] != float64(5) {
		t.Fatalf("unexpected reboot payload: %v", data)
	}
}

func TestQueryWhitelistDetailPassesRawResponse(t *testing.T) {
	client, ip := newDeviceStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":0,"message":"ok","data":{"name":"Tan"}}`))
	})

	result := client.QueryWhitelistDetail(ip, "990101015678")
	if result.Result != models.ResultOK {
		t.Fatalf("expected success, got %+v", result)
	}
	if !strings.Contains(string(result.Raw), `"name":"Tan"`) {
		t.Fatalf("raw device response must be passed through, got %s", result.Raw)
	}
}

func TestProbeDeviceOnline(t *testing.T) {
	client, ip := newDeviceStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getDeviceParameter" {
			t.Errorf("unexpected endpoint: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.VendorResponse{Result: 0})
	})

	if status := client.ProbeDevice(ip); status != models.DeviceStatusOnline {
		t.Fatalf("expected online, got %s", status)
	}
}

func TestProbeDeviceOfflineOnTimeout(t *testing.T) {
	client, ip := newDeviceStub(t, func(w http.ResponseWriter, r *http.Request) {
		// 超过探测超时才响应
		time.Sleep(500 * time.Millisecond)
		json.NewEncoder(w).Encode(models.VendorResponse{Result: 0})
	})

	if status := client.ProbeDevice(ip); status != models.DeviceStatusOffline {
		t.Fatalf("slow device must be reported offline, got %s", status)
	}
}

func TestProbeDeviceOfflineOnUnreachable(t *testing.T) {
	cfg := &config.Config{
		DevicePass:      "888888",
		DevicePort:      "1", // 不可达端口
		ProbeTimeoutMS:  200,
		CommandTimeoutS: 1,
	}
	client := NewWhitelistClient(cfg)

	if status := client.ProbeDevice("127.0.0.1"); status != models.DeviceStatusOffline {
		t.Fatalf("unreachable device must be reported offline, got %s", status)
	}
}

func TestAddWhitelistUnreachableYieldsLocalFailure(t *testing.T) {
	cfg := &config.Config{
		DevicePass:      "888888",
		DevicePort:      "1",
		ProbeTimeoutMS:  200,
		CommandTimeoutS: 1,
	}
	client := NewWhitelistClient(cfg)

	result := client.AddWhitelist("127.0.0.1", &models.User{ID: "990101015678"})
	if result.Result != models.ResultLocalFailure {
		t.Fatalf("expected local failure, got %+v", result)
	}
	if !strings.HasPrefix(result.Message, "API call failed:") {
		t.Fatalf("unexpected failure message: %s", result.Message)
	}
}
