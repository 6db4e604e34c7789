package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/models"
)

// InterfaceWhitelistClient 定义设备白名单协议客户端接口。
// 协议为厂商固定契约：POST http://<ip>:<port>/<endpoint>，
// 请求体 {pass, data:{...}}，响应体 {result, message}，result为0表示成功。
type InterfaceWhitelistClient interface {
	ProbeDevice(ip string) models.DeviceStatus
	AddWhitelist(ip string, user *models.User) models.SyncResult
	DeleteWhitelist(ip string, idno string) models.SyncResult
	QueryWhitelistDetail(ip string, idno string) models.SyncResult
	QueryFaceFeature(ip string, picData string) models.SyncResult
	RemoteOpen(ip string) (*models.VendorResponse, error)
	RebootDevice(ip string) (*models.VendorResponse, error)
}

// 厂商协议端点
const (
	endpointAddWhitelist    = "addDeviceWhiteList"
	endpointDeleteWhitelist = "deleteDeviceWhiteList"
	endpointWhitelistDetail = "getDeviceWhiteListDetailByIdNum"
	endpointFaceFeature     = "getPictureFeature"
	endpointDeviceParameter = "getDeviceParameter"
	endpointRemoteOpen      = "setDeviceRemoteOpen"
	endpointReboot          = "setDeviceReboot"
)

// WhitelistClient 厂商设备协议客户端实现
type WhitelistClient struct {
	Config *config.Config

	// 探测请求与指令请求使用独立的HTTP客户端：探测必须在1秒内
	// 判定离线，指令允许更长的有界超时。
	probeClient   *http.Client
	commandClient *http.Client
}

// NewWhitelistClient 创建一个新的设备协议客户端
func NewWhitelistClient(cfg *config.Config) InterfaceWhitelistClient {
	return &WhitelistClient{
		Config:        cfg,
		probeClient:   &http.Client{Timeout: cfg.ProbeTimeout()},
		commandClient: &http.Client{Timeout: cfg.CommandTimeout()},
	}
}

// 厂商白名单下发请求体，字段名为协议原文，不可改动
type addWhitelistRequest struct {
	Totalnum   int                 `json:"totalnum"`
	Pass       string              `json:"pass"`
	Currentnum int                 `json:"currentnum"`
	Data       addWhitelistPayload `json:"data"`
}

type addWhitelistPayload struct {
	Usertype        string `json:"usertype"`
	Name            string `json:"name"`
	Idno            string `json:"idno"`
	Icno            string `json:"icno"`
	Peoplestartdate string `json:"peoplestartdate"`
	Peopleenddate   string `json:"peopleenddate"`
	PicData1        string `json:"picData1,omitempty"`
	PassAlgo        bool   `json:"passAlgo,omitempty"`
}

type vendorRequest struct {
	Pass string      `json:"pass"`
	Data interface{} `json:"data,omitempty"`
}

// deviceURL 拼接设备端点地址
func (c *WhitelistClient) deviceURL(ip, endpoint string) string {
	return fmt.Sprintf("http://%s:%s/%s", ip, c.Config.DevicePort, endpoint)
}

// post 向设备发送一条指令并解析厂商响应，返回原始响应体用于透传
func (c *WhitelistClient) post(client *http.Client, ip, endpoint string, body interface{}) (*models.VendorResponse, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}

	resp, err := client.Post(c.deviceURL(ip, endpoint), "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, raw, fmt.Errorf("device returned status code %d", resp.StatusCode)
	}

	var vendorResp models.VendorResponse
	if err := json.Unmarshal(raw, &vendorResp); err != nil {
		return nil, raw, fmt.Errorf("malformed device response: %v", err)
	}

	return &vendorResp, raw, nil
}

// failedResult 把本地失败归一化成SyncResult，调用方永远看不到协议层错误
func failedResult(ip string, err error) models.SyncResult {
	return models.SyncResult{
		Device:  ip,
		Result:  models.ResultLocalFailure,
		Message: fmt.Sprintf("API call failed: %v", err),
	}
}

// ProbeDevice 探测设备是否在线。任何网络错误、超时或非零结果码都
// 判定为离线，本函数不返回错误。
func (c *WhitelistClient) ProbeDevice(ip string) models.DeviceStatus {
	resp, _, err := c.post(c.probeClient, ip, endpointDeviceParameter, vendorRequest{Pass: c.Config.DevicePass})
	if err != nil {
		config.Warning("设备 %s 健康探测失败: %v", ip, err)
		return models.DeviceStatusOffline
	}
	if resp.Result != models.ResultOK {
		return models.DeviceStatusOffline
	}
	return models.DeviceStatusOnline
}

// AddWhitelist 向单台设备下发白名单。未携带图片时必须设置passAlgo，
// 厂商要求图片与passAlgo二选一。
func (c *WhitelistClient) AddWhitelist(ip string, user *models.User) models.SyncResult {
	payload := addWhitelistPayload{
		Usertype:        "white",
		Name:            user.Name,
		Idno:            user.ID,
		Icno:            user.ID,
		Peoplestartdate: user.StartDate,
		Peopleenddate:   user.ExpiredDateOut,
	}
	if user.Base64 != "" {
		payload.PicData1 = user.Base64
	} else {
		payload.PassAlgo = true
	}

	req := addWhitelistRequest{
		Totalnum:   1,
		Pass:       c.Config.DevicePass,
		Currentnum: 1,
		Data:       payload,
	}

	resp, _, err := c.post(c.commandClient, ip, endpointAddWhitelist, req)
	if err != nil {
		return failedResult(ip, err)
	}
	return models.SyncResult{Device: ip, Result: resp.Result, Message: resp.Message}
}

// DeleteWhitelist 从单台设备删除白名单条目
func (c *WhitelistClient) DeleteWhitelist(ip string, idno string) models.SyncResult {
	req := vendorRequest{
		Pass: c.Config.DevicePass,
		Data: map[string]string{
			"idno":     idno,
			"usertype": "white",
		},
	}

	resp, _, err := c.post(c.commandClient, ip, endpointDeleteWhitelist, req)
	if err != nil {
		return failedResult(ip, err)
	}
	return models.SyncResult{Device: ip, Result: resp.Result, Message: resp.Message}
}

// QueryWhitelistDetail 查询单台设备上某身份证号的白名单详情
func (c *WhitelistClient) QueryWhitelistDetail(ip string, idno string) models.SyncResult {
	req := vendorRequest{
		Pass: c.Config.DevicePass,
		Data: map[string]string{"idno": idno},
	}

	resp, raw, err := c.post(c.commandClient, ip, endpointWhitelistDetail, req)
	if err != nil {
		return failedResult(ip, err)
	}
	return models.SyncResult{Device: ip, Result: resp.Result, Message: resp.Message, Raw: raw}
}

// QueryFaceFeature 在单台设备上做人脸特征比对
func (c *WhitelistClient) QueryFaceFeature(ip string, picData string) models.SyncResult {
	req := vendorRequest{
		Pass: c.Config.DevicePass,
		Data: map[string]string{"picData": picData},
	}

	resp, raw, err := c.post(c.commandClient, ip, endpointFaceFeature, req)
	if err != nil {
		return failedResult(ip, err)
	}
	return models.SyncResult{Device: ip, Result: resp.Result, Message: resp.Message, Raw: raw}
}

// RemoteOpen 远程开闸
func (c *WhitelistClient) RemoteOpen(ip string) (*models.VendorResponse, error) {
	resp, _, err := c.post(c.commandClient, ip, endpointRemoteOpen, vendorRequest{Pass: c.Config.DevicePass})
	if err != nil {
		return nil, fmt.Errorf("failed to open gate: %v", err)
	}
	return resp, nil
}

// RebootDevice 延迟5秒重启设备
func (c *WhitelistClient) RebootDevice(ip string) (*models.VendorResponse, error) {
	req := vendorRequest{
		Pass: c.Config.DevicePass,
		Data: map[string]interface{}{
			"type":  "DelayReboot",
			"value": 5,
		},
	}

	resp, _, err := c.post(c.commandClient, ip, endpointReboot, req)
	if err != nil {
		return nil, fmt.Errorf("failed to restart device: %v", err)
	}
	return resp, nil
}
