package msg

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gridfire/arena/internal/net/packet"
	"go.uber.org/zap"
)

func TestRoundTripLaw(t *testing.T) {
	cases := []Message{
		&Hello{Version: 3, Name: "slayer", Password: "hunter2"},
		&Welcome{PlayerID: 9, AvatarID: 0x0000000200000007, TickMillis: 33, ArenaW: 2000, ArenaH: 1500},
		&Reject{Reason: "server full"},
		&PlayerInput{Seq: 41, MoveX: -1, MoveY: 0.5, Aim: 1.25, Fire: true},
		&Spawn{ID: 77, Kind: 2, OwnerID: 9, X: 10.5, Y: -3, Orient: 0.25, VelX: 4, VelY: -4},
		&UpdateTransform{ID: 77, Seq: 1042, X: 11, Y: -2.5, Orient: 0.3, VelX: 4, VelY: -4},
		&Destroy{ID: 77},
		&PlayerJoined{PlayerID: 9, Name: "slayer"},
		&PlayerLeft{PlayerID: 9},
		&Score{PlayerID: 9, Seq: 6, Kills: 4, Deaths: 1, Points: 12},
		&Ping{Nonce: 0xfeedface},
		&Pong{Nonce: 0xfeedface},
		&Bye{},
	}
	for _, m := range cases {
		data := Encode(m)
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("%s: Decode failed: %v", m.Tag(), err)
		}
		if !reflect.DeepEqual(got, m) {
			t.Errorf("%s: round trip mismatch\n got:  %#v\n want: %#v", m.Tag(), got, m)
		}
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	_, err := Decode([]byte{0xEE, 0, 0, 0})
	var mal *packet.MalformedError
	if !errors.As(err, &mal) {
		t.Fatalf("err = %v, want MalformedError", err)
	}
	if mal.Reason != "unknown message type" {
		t.Fatalf("Reason = %q", mal.Reason)
	}
}

func TestDecodeTruncated(t *testing.T) {
	full := Encode(&UpdateTransform{ID: 5, Seq: 1, X: 1, Y: 2})
	for cut := 0; cut < len(full); cut++ {
		if _, err := Decode(full[:cut]); err == nil {
			t.Fatalf("Decode accepted a %d/%d-byte prefix", cut, len(full))
		}
	}
}

func TestDecodeDeclaredLengthPastEnd(t *testing.T) {
	data := Encode(&Reject{Reason: "full"})
	data[1] = 0xFF // inflate the string length prefix past the buffer
	data[2] = 0x00
	_, err := Decode(data)
	var mal *packet.MalformedError
	if !errors.As(err, &mal) {
		t.Fatalf("err = %v, want MalformedError", err)
	}
}

func TestDispatchStateGate(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var gotInput *PlayerInput
	reg.Register(TagPlayerInput, []ConnState{StateInGame}, func(peer any, m Message) {
		gotInput = m.(*PlayerInput)
	})

	data := Encode(&PlayerInput{Seq: 7, MoveX: 1})

	if err := reg.Dispatch(nil, StateHandshake, data); err == nil {
		t.Fatalf("Dispatch allowed PlayerInput during handshake")
	}
	if gotInput != nil {
		t.Fatalf("handler ran despite state gate")
	}

	if err := reg.Dispatch(nil, StateInGame, data); err != nil {
		t.Fatalf("Dispatch failed in allowed state: %v", err)
	}
	if gotInput == nil || gotInput.Seq != 7 {
		t.Fatalf("handler did not receive decoded message: %#v", gotInput)
	}
}

func TestDispatchDropsMalformed(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	called := false
	reg.Register(TagHello, []ConnState{StateHandshake}, func(any, Message) { called = true })

	if err := reg.Dispatch(nil, StateHandshake, []byte{byte(TagHello), 0xFF}); err != nil {
		t.Fatalf("malformed datagram escalated to error: %v", err)
	}
	if called {
		t.Fatalf("handler ran on malformed datagram")
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(TagBye, []ConnState{StateInGame}, func(any, Message) {
		panic("boom")
	})
	err := reg.Dispatch(nil, StateInGame, Encode(&Bye{}))
	if err == nil {
		t.Fatalf("panic not surfaced as error")
	}
}
