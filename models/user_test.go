package models

import "testing"

func TestMergeUserNonEmptyFieldsOverwrite(t *testing.T) {
	existing := &User{
		ID:     "990101015678",
		Name:   "Old Name",
		Email:  "old@example.com",
		Status: string(UserStatusUnpaid),
		Photo:  "uploads/old.jpg",
	}
	incoming := &User{
		ID:     "990101015678",
		Name:   "New Name",
		Status: string(UserStatusPaid),
	}

	merged := MergeUser(existing, incoming)

	if merged.Name != "New Name" {
		t.Fatalf("non-empty incoming name must overwrite, got %q", merged.Name)
	}
	if merged.Status != string(UserStatusPaid) {
		t.Fatalf("non-empty incoming status must overwrite, got %q", merged.Status)
	}
	// 空字段保留原值
	if merged.Email != "old@example.com" {
		t.Fatalf("empty incoming email must preserve existing value, got %q", merged.Email)
	}
	if merged.Photo != "uploads/old.jpg" {
		t.Fatalf("empty incoming photo must preserve existing value, got %q", merged.Photo)
	}
}

func TestMergeUserZeroOrderDetailIDPreserved(t *testing.T) {
	existing := &User{ID: "990101015678", OrderDetailID: 1001, OrderID: "1001"}
	incoming := &User{ID: "990101015678"}

	merged := MergeUser(existing, incoming)

	if merged.OrderDetailID != 1001 || merged.OrderID != "1001" {
		t.Fatalf("zero order fields must preserve existing values, got %d / %q",
			merged.OrderDetailID, merged.OrderID)
	}
}

func TestMergeUserKeepsExistingID(t *testing.T) {
	existing := &User{ID: "990101015678", Name: "Tan"}
	incoming := &User{ID: "111111111111", Name: "Lim"}

	merged := MergeUser(existing, incoming)

	if merged.ID != "990101015678" {
		t.Fatalf("merge must never rewrite the primary identity, got %q", merged.ID)
	}
}

func TestMergeUserDoesNotMutateInputs(t *testing.T) {
	existing := &User{ID: "990101015678", Name: "Tan"}
	incoming := &User{Name: "Lim"}

	_ = MergeUser(existing, incoming)

	if existing.Name != "Tan" {
		t.Fatal("merge must not mutate the existing record")
	}
}

func TestAnySuccess(t *testing.T) {
	if AnySuccess(nil) {
		t.Fatal("empty results must not count as success")
	}
	if AnySuccess([]SyncResult{{Result: ResultLocalFailure}, {Result: 2}}) {
		t.Fatal("no device succeeded")
	}
	if !AnySuccess([]SyncResult{{Result: ResultLocalFailure}, {Result: ResultOK}}) {
		t.Fatal("one successful device must count as overall success")
	}
}
