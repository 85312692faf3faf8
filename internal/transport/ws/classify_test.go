package ws

import (
	"errors"
	"net/url"
	"testing"

	"github.com/cwrk-planet/call-service/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		role    Role
		room    string
		pName   string
		pRole   string
		device  string
		wantErr bool
	}{
		{name: "room full params", query: "roomId=R1&participantId=p1&participantName=Alice&role=admin",
			role: RoleRoom, room: "R1", pName: "Alice", pRole: domain.RoleAdmin},
		{name: "room defaults", query: "roomId=R1",
			role: RoleRoom, room: "R1", pName: "Anonymous", pRole: domain.RoleUser},
		{name: "name double encoded", query: "roomId=R1&participantName=Jane%2520Doe",
			role: RoleRoom, room: "R1", pName: "Jane Doe", pRole: domain.RoleUser},
		{name: "name trimmed", query: "roomId=R1&participantName=%20%20Bob%20",
			role: RoleRoom, room: "R1", pName: "Bob", pRole: domain.RoleUser},
		{name: "blank name", query: "roomId=R1&participantName=%20",
			role: RoleRoom, room: "R1", pName: "Anonymous", pRole: domain.RoleUser},
		{name: "plus kept", query: "roomId=R1&participantName=C%2B%2B",
			role: RoleRoom, room: "R1", pName: "C++", pRole: domain.RoleUser},
		{name: "unknown role", query: "roomId=R1&role=moderator",
			role: RoleRoom, room: "R1", pName: "Anonymous", pRole: domain.RoleUser},
		{name: "room wins over device", query: "roomId=R1&deviceId=D1",
			role: RoleRoom, room: "R1", pName: "Anonymous", pRole: domain.RoleUser},
		{name: "device", query: "deviceId=D1", role: RoleDevice, device: "D1"},
		{name: "nothing", query: "foo=bar", wantErr: true},
		{name: "blank ids", query: "roomId=%20&deviceId=", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			if err != nil {
				t.Fatal(err)
			}
			id, err := Classify(q)
			if tc.wantErr {
				if !errors.Is(err, ErrUnclassified) {
					t.Fatalf("err = %v, want ErrUnclassified", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("classify: %v", err)
			}
			if id.Role != tc.role || id.RoomID != tc.room || id.DeviceID != tc.device {
				t.Fatalf("identity = %+v", id)
			}
			if tc.role == RoleRoom {
				if id.Participant.Name != tc.pName || id.Participant.Role != tc.pRole {
					t.Fatalf("participant = %+v", id.Participant)
				}
				if id.Participant.ID == "" {
					t.Fatal("participant id must be generated when absent")
				}
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for k := KindJoinRoom; k <= KindCallEnd; k++ {
		if got := ParseKind(k.String()); got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	for _, s := range []string{"", "unknown", "JOIN-ROOM", "ping"} {
		if got := ParseKind(s); got != KindUnknown {
			t.Errorf("ParseKind(%q) = %v, want unknown", s, got)
		}
	}
}

func TestPhaseOf(t *testing.T) {
	cases := map[int]Phase{0: PhaseEmpty, 1: PhaseWaiting, 2: PhaseReady, 3: PhaseReady}
	for n, want := range cases {
		if got := PhaseOf(n); got != want {
			t.Errorf("PhaseOf(%d) = %v, want %v", n, got, want)
		}
	}
	if !CanSeat(1, false) || CanSeat(2, false) || !CanSeat(2, true) {
		t.Fatal("CanSeat capacity rules broken")
	}
}
