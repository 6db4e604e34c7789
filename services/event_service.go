package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/models"
)

// InterfaceEventService 定义MQTT事件推送服务接口。
// 推送是尽力而为的旁路通知，失败只记日志，不影响同步主流程。
type InterfaceEventService interface {
	Connect() error
	Disconnect()
	PublishDeviceStatus(ip string, status models.DeviceStatus)
	PublishSyncResult(operation, identity string, results []models.SyncResult)
	PublishSyncReport(report interface{})
}

// 事件主题
const (
	TopicDeviceStatus = "gate/device/status"
	TopicSyncResult   = "gate/sync/result"
	TopicSyncReport   = "gate/sync/report"
)

// EventService MQTT事件推送实现
type EventService struct {
	Config         *config.Config
	Client         mqtt.Client
	IsConnected    bool
	connectedMutex sync.RWMutex
	PublishMutex   sync.Mutex
}

// deviceStatusEvent 设备状态事件载荷
type deviceStatusEvent struct {
	IP        string `json:"ip"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// syncResultEvent 同步结果事件载荷
type syncResultEvent struct {
	Operation string              `json:"operation"`
	Identity  string              `json:"identity"`
	Results   []models.SyncResult `json:"results"`
	Timestamp int64               `json:"timestamp"`
}

// NewEventService 创建一个新的MQTT事件推送服务
func NewEventService(cfg *config.Config) InterfaceEventService {
	service := &EventService{
		Config:      cfg,
		IsConnected: false,
	}

	if cfg.MQTTBrokerURL != "" {
		service.setupMQTTClient()
	}

	return service
}

// setupMQTTClient 配置MQTT客户端
func (s *EventService) setupMQTTClient() {
	opts := mqtt.NewClientOptions().
		AddBroker(s.Config.MQTTBrokerURL).
		SetClientID(s.Config.MQTTClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second).
		SetOnConnectHandler(func(client mqtt.Client) {
			s.setConnected(true)
			log.Printf("MQTT已连接: %s", s.Config.MQTTBrokerURL)
		}).
		SetConnectionLostHandler(func(client mqtt.Client, err error) {
			s.setConnected(false)
			log.Printf("MQTT连接断开: %v", err)
		})

	s.Client = mqtt.NewClient(opts)
}

// Connect 连接MQTT服务器，未配置Broker时直接跳过
func (s *EventService) Connect() error {
	if s.Client == nil {
		log.Printf("未配置MQTT Broker，事件推送停用")
		return nil
	}

	token := s.Client.Connect()
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Disconnect 断开MQTT连接
func (s *EventService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
	s.setConnected(false)
}

func (s *EventService) setConnected(connected bool) {
	s.connectedMutex.Lock()
	defer s.connectedMutex.Unlock()
	s.IsConnected = connected
}

func (s *EventService) connected() bool {
	s.connectedMutex.RLock()
	defer s.connectedMutex.RUnlock()
	return s.IsConnected
}

// publish 发布一条JSON事件
func (s *EventService) publish(topic string, payload interface{}) {
	if s.Client == nil || !s.connected() {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("事件序列化失败: %v", err)
		return
	}

	s.PublishMutex.Lock()
	defer s.PublishMutex.Unlock()

	token := s.Client.Publish(topic, 0, false, data)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		log.Printf("事件发布失败 [%s]: %v", topic, token.Error())
	}
}

// PublishDeviceStatus 推送设备状态变化事件
func (s *EventService) PublishDeviceStatus(ip string, status models.DeviceStatus) {
	s.publish(TopicDeviceStatus, deviceStatusEvent{
		IP:        ip,
		Status:    string(status),
		Timestamp: time.Now().UnixMilli(),
	})
}

// PublishSyncResult 推送一次扇出的聚合结果
func (s *EventService) PublishSyncResult(operation, identity string, results []models.SyncResult) {
	s.publish(TopicSyncResult, syncResultEvent{
		Operation: operation,
		Identity:  identity,
		Results:   results,
		Timestamp: time.Now().UnixMilli(),
	})
}

// PublishSyncReport 推送一次对账任务的汇总报告
func (s *EventService) PublishSyncReport(report interface{}) {
	s.publish(TopicSyncReport, report)
}
