package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

var (
	superadmin = Identity{ID: "s1", Role: RoleSuperAdmin}
	admin      = Identity{ID: "a1", Role: RoleAdmin}
	alice      = Identity{ID: "m1", Role: RoleMember}
	bob        = Identity{ID: "m2", Role: RoleMember}
)

func TestParseRecipient(t *testing.T) {
	cases := map[string]Recipient{
		"":      PrivilegedGroup(),
		"admin": PrivilegedGroup(),
		"all":   Broadcast(),
		" all ": Broadcast(),
		"m1":    Direct("m1"),
		"Admin": Direct("Admin"),
		" m1\t": Direct("m1"),
	}
	for in, want := range cases {
		if got := ParseRecipient(in); got != want {
			t.Errorf("ParseRecipient(%q) = %+v, want %+v", in, got, want)
		}
	}
}

func TestRecipient_JSON(t *testing.T) {
	n := Notification{ID: "n1", Recipient: Direct("m1")}
	b, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"recipient":"m1"`) {
		t.Fatalf("recipient must encode as its wire string: %s", b)
	}

	var back Notification
	if err := json.Unmarshal([]byte(`{"recipient":"all"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Recipient != Broadcast() {
		t.Fatalf("expected broadcast, got %+v", back.Recipient)
	}
}

func TestResolveRecipient(t *testing.T) {
	requested := []Recipient{Broadcast(), PrivilegedGroup(), Direct("m2")}
	for _, r := range requested {
		if got := ResolveRecipient(alice, r); got != PrivilegedGroup() {
			t.Errorf("member asking for %v: got %v, want admin", r, got)
		}
		for _, sender := range []Identity{admin, superadmin} {
			if got := ResolveRecipient(sender, r); got != r {
				t.Errorf("%s asking for %v: got %v", sender.Role, r, got)
			}
		}
	}
}

func TestNotification_VisibleTo(t *testing.T) {
	cases := []struct {
		recipient Recipient
		viewer    Identity
		visible   bool
		markable  bool
	}{
		{Broadcast(), alice, true, false},
		{Broadcast(), admin, true, false},
		{PrivilegedGroup(), alice, false, false},
		{PrivilegedGroup(), admin, true, true},
		{PrivilegedGroup(), superadmin, true, true},
		{Direct("m1"), alice, true, true},
		{Direct("m1"), bob, false, false},
		{Direct("m1"), admin, false, false},
	}
	for _, tc := range cases {
		n := &Notification{Recipient: tc.recipient}
		if got := n.VisibleTo(tc.viewer); got != tc.visible {
			t.Errorf("%v visible to %s: got %v", tc.recipient, tc.viewer.ID, got)
		}
		if got := n.CanMarkRead(tc.viewer); got != tc.markable {
			t.Errorf("%v markable by %s: got %v", tc.recipient, tc.viewer.ID, got)
		}
	}
}

func TestValidateNotificationContent(t *testing.T) {
	if err := ValidateNotificationContent("hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateNotificationContent(" \n"); KindOf(err) != KindValidation {
		t.Fatalf("blank content must be a validation failure, got %v", err)
	}
	if err := ValidateNotificationContent(strings.Repeat("é", MaxNotificationContentLength)); err != nil {
		t.Fatalf("limit counts characters, not bytes: %v", err)
	}
	if err := ValidateNotificationContent(strings.Repeat("x", MaxNotificationContentLength+1)); KindOf(err) != KindValidation {
		t.Fatalf("oversized content must be rejected, got %v", err)
	}
}
