package controllers

import (
	"testing"

	"github.com/website-f/gate/models"
)

func TestPersistIdentityChangeRequiresRetrySuccess(t *testing.T) {
	// 重试轮整体失败（设备在两轮之间全部离线）时，即使身份被改写
	// 也不能写回名册
	failed := []models.SyncResult{
		{Device: "10.0.0.1", Result: models.ResultLocalFailure, Message: models.MsgDeviceOffline},
	}
	if persistIdentityChange("111111111111", "222222222222", failed) {
		t.Fatal("failed retry round must not rewrite the roster identity")
	}
}

func TestPersistIdentityChangeOnSuccessfulRetry(t *testing.T) {
	ok := []models.SyncResult{
		{Device: "10.0.0.1", Result: models.ResultOK, Message: "success"},
		{Device: "10.0.0.2", Result: models.ResultLocalFailure, Message: models.MsgDeviceOffline},
	}
	if !persistIdentityChange("111111111111", "222222222222", ok) {
		t.Fatal("successful retry with a changed identity must be persisted")
	}
}

func TestPersistIdentityChangeUnchangedIdentity(t *testing.T) {
	ok := []models.SyncResult{
		{Device: "10.0.0.1", Result: models.ResultOK, Message: "success"},
	}
	if persistIdentityChange("111111111111", "111111111111", ok) {
		t.Fatal("unchanged identity needs no reassignment")
	}
}
