package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/models"
	"github.com/website-f/gate/utils"
)

// InterfaceBackofficeService 定义上游对账服务接口
type InterfaceBackofficeService interface {
	Login() (string, error)
	PerformSync() (*SyncReport, error)
	ForwardOrder(token string, orderData interface{}) (int, []byte, error)
}

// BackofficeService 对接上游Backoffice API：认证、拉取待同步订单、
// 物化本地用户并逐个扇出到设备。
type BackofficeService struct {
	Config *config.Config
	HTTP   *http.Client
	Users  InterfaceUserService
	Sync   InterfaceSyncService
	Photos InterfacePhotoService
	Cache  InterfaceRedisService
	Events InterfaceEventService
}

// NewBackofficeService 创建一个新的上游对账服务
func NewBackofficeService(cfg *config.Config, users InterfaceUserService, sync InterfaceSyncService, photos InterfacePhotoService, cache InterfaceRedisService, events InterfaceEventService) InterfaceBackofficeService {
	return &BackofficeService{
		Config: cfg,
		HTTP:   &http.Client{Timeout: 30 * time.Second},
		Users:  users,
		Sync:   sync,
		Photos: photos,
		Cache:  cache,
		Events: events,
	}
}

// OrderDetail 上游待同步的订单明细
type OrderDetail struct {
	OrderDetailID int    `json:"order_detail_id"`
	Image         string `json:"image"`
}

// SyncReport 一次对账任务的汇总结果
type SyncReport struct {
	RunID     string           `json:"run_id"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Message   string           `json:"message"`
	Items     []SyncItemResult `json:"items,omitempty"`
}

// SyncItemResult 单条订单的处理结果
type SyncItemResult struct {
	OrderDetailID int                 `json:"order_detail_id"`
	UserID        string              `json:"user_id,omitempty"`
	DBOperation   string              `json:"db_operation,omitempty"`
	Devices       []models.SyncResult `json:"devices,omitempty"`
	Error         string              `json:"error,omitempty"`
}

type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

type orderDetailsResponse struct {
	Data []OrderDetail `json:"data"`
}

// Login 认证上游API并提取可用令牌。上游把令牌包在复合串里，竖线
// 之后的片段才是凭证；令牌缺失或畸形视为致命的认证失败。
func (s *BackofficeService) Login() (string, error) {
	loginURL := fmt.Sprintf("%s/auth/login?email=%s&password=%s",
		s.Config.BackofficeAPIURL,
		url.QueryEscape(s.Config.APIEmail),
		url.QueryEscape(s.Config.APIPassword))

	resp, err := s.HTTP.Post(loginURL, "application/json", nil)
	if err != nil {
		return "", fmt.Errorf("上游登录请求失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("上游登录返回状态码 %d", resp.StatusCode)
	}

	var loginResp loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", fmt.Errorf("解析登录响应失败: %v", err)
	}

	token := ExtractToken(loginResp.Data.Token)
	if token == "" {
		return "", errors.New("上游未返回有效令牌")
	}

	if s.Cache != nil {
		if err := s.Cache.CacheBackofficeToken(token, 50*time.Minute); err != nil {
			config.Warning("缓存上游令牌失败: %v", err)
		}
	}

	return token, nil
}

// ExtractToken 从上游返回的复合令牌串中取出可用片段
func ExtractToken(raw string) string {
	if idx := strings.Index(raw, "|"); idx >= 0 {
		return strings.TrimSpace(raw[idx+1:])
	}
	return strings.TrimSpace(raw)
}

// authToken 获取上游访问令牌：优先复用Redis里缓存的令牌，未命中时
// 重新登录。第二个返回值标记令牌是否来自缓存，供调用方在令牌已失效
// 时决定重新登录。
func (s *BackofficeService) authToken() (string, bool, error) {
	if s.Cache != nil {
		if token, err := s.Cache.GetBackofficeToken(); err == nil && token != "" {
			return token, true, nil
		}
	}

	token, err := s.Login()
	return token, false, err
}

// fetchOrderDetails 拉取配置门店下的待同步订单明细
func (s *BackofficeService) fetchOrderDetails(token string) ([]OrderDetail, error) {
	fetchURL := fmt.Sprintf("%s/turnstile-order-details?store_id=%s",
		s.Config.BackofficeAPIURL, url.QueryEscape(s.Config.StoreID))

	req, err := http.NewRequest(http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("拉取订单明细失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("拉取订单明细返回状态码 %d", resp.StatusCode)
	}

	var detailsResp orderDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&detailsResp); err != nil {
		return nil, fmt.Errorf("解析订单明细失败: %v", err)
	}

	return detailsResp.Data, nil
}

// downloadImage 下载人脸图片并编码为纯base64
func (s *BackofficeService) downloadImage(imageURL string) (string, error) {
	resp, err := s.HTTP.Get(imageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("图片下载返回状态码 %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// PerformSync 执行一次对账：认证、拉取、逐条物化并扇出。
// 认证和拉取失败对整个任务是致命的；单条订单的失败只降级该条，
// 不影响其余订单。
func (s *BackofficeService) PerformSync() (*SyncReport, error) {
	runID := uuid.NewString()
	config.Info("对账任务 %s 开始", runID)

	token, cached, err := s.authToken()
	if err != nil {
		config.Error("对账任务 %s 认证失败: %v", runID, err)
		return nil, errors.New("Sync failed. Check logs for details.")
	}

	details, err := s.fetchOrderDetails(token)
	if err != nil && cached {
		// 缓存令牌可能已过期，重新登录一次再拉取
		config.Warning("对账任务 %s 使用缓存令牌拉取失败，重新登录: %v", runID, err)
		if token, err = s.Login(); err == nil {
			details, err = s.fetchOrderDetails(token)
		}
	}
	if err != nil {
		config.Error("对账任务 %s 拉取失败: %v", runID, err)
		return nil, errors.New("Sync failed. Check logs for details.")
	}

	report := &SyncReport{RunID: runID, Total: len(details)}
	if len(details) == 0 {
		report.Message = "No new users to sync."
		config.Info("对账任务 %s 完成: 没有待同步订单", runID)
		return report, nil
	}

	config.Info("对账任务 %s: 发现 %d 条待同步订单", runID, len(details))

	for _, detail := range details {
		item := s.processOrderDetail(detail)
		if item.Error != "" {
			report.Failed++
		} else {
			report.Succeeded++
		}
		report.Items = append(report.Items, item)
	}

	report.Message = "Sync completed."
	config.Info("对账任务 %s 完成: 成功 %d, 失败 %d", runID, report.Succeeded, report.Failed)

	if s.Events != nil {
		s.Events.PublishSyncReport(report)
	}
	return report, nil
}

// processOrderDetail 处理单条订单：下载图片（失败降级为无照片）、
// 生成本地唯一标识、入库并扇出到设备。
func (s *BackofficeService) processOrderDetail(detail OrderDetail) (item SyncItemResult) {
	item.OrderDetailID = detail.OrderDetailID

	// 单条订单的意外错误不能中断整批
	defer func() {
		if r := recover(); r != nil {
			item.Error = fmt.Sprintf("%v", r)
		}
	}()

	var base64Image, photoPath string
	if detail.Image != "" {
		img, err := s.downloadImage(detail.Image)
		if err != nil {
			config.Warning("订单 %d 图片下载失败，按无照片处理: %v", detail.OrderDetailID, err)
		} else {
			base64Image = img
			saved, err := s.Photos.SavePhoto(strconv.Itoa(detail.OrderDetailID), img)
			if err != nil {
				config.Warning("订单 %d 照片保存失败: %v", detail.OrderDetailID, err)
				base64Image = ""
			} else {
				photoPath = saved
			}
		}
	}

	user := &models.User{
		ID:            utils.GenerateUniqueID(),
		Name:          fmt.Sprintf("User-%d", detail.OrderDetailID),
		Role:          "guest",
		Area:          "default",
		Status:        string(models.UserStatusPaid),
		Photo:         photoPath,
		Base64:        base64Image,
		OrderDetailID: detail.OrderDetailID,
		OrderID:       strconv.Itoa(detail.OrderDetailID),
	}

	operation, err := s.Users.SaveUser(user)
	if err != nil {
		item.Error = fmt.Sprintf("用户入库失败: %v", err)
		return item
	}

	item.UserID = user.ID
	item.DBOperation = operation
	item.Devices = s.Sync.AddUserToAllDevices(user)
	return item
}

// ForwardOrder 把订单透传给上游，使用调用方提供的令牌
func (s *BackofficeService) ForwardOrder(token string, orderData interface{}) (int, []byte, error) {
	payload, err := json.Marshal(map[string]interface{}{"orderData": orderData})
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequest(http.MethodPost, s.Config.BackofficeAPIURL+"/orders/store", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("转发订单失败: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}
