package services

import "testing"

func TestParseDuplicateFaceMatch(t *testing.T) {
	ic, ok := ParseDuplicateFace(1, "添加失败，与990101015678,1照片重复")
	if !ok {
		t.Fatal("expected duplicate face signal to be detected")
	}
	if ic != "990101015678" {
		t.Fatalf("expected conflicting identity 990101015678, got %s", ic)
	}
}

func TestParseDuplicateFaceWrongResultCode(t *testing.T) {
	// 消息文案匹配但结果码不是1时不能触发重试
	if _, ok := ParseDuplicateFace(0, "与990101015678,1照片重复"); ok {
		t.Fatal("result code 0 must not be treated as duplicate face")
	}
	if _, ok := ParseDuplicateFace(-1, "与990101015678,1照片重复"); ok {
		t.Fatal("local failure must not be treated as duplicate face")
	}
}

func TestParseDuplicateFaceUnrelatedMessage(t *testing.T) {
	if _, ok := ParseDuplicateFace(1, "添加失败，参数错误"); ok {
		t.Fatal("unrelated failure message must not be treated as duplicate face")
	}
	if _, ok := ParseDuplicateFace(1, ""); ok {
		t.Fatal("empty message must not be treated as duplicate face")
	}
}
