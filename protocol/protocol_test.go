package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestCommandRoundTrip(t *testing.T) {
	params := make([]uint8, GridLen)
	for i := range params {
		params[i] = uint8(i + 1)
	}
	cmd := Command{Opcode: OpUpdateGrid, AppNum: 2, Parameters: params}

	buf := &bytes.Buffer{}
	if err := WriteCommand(buf, cmd); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := ReadCommand(json.NewDecoder(buf))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Opcode != cmd.Opcode || got.AppNum != cmd.AppNum {
		t.Fatalf("header mismatch: %+v vs %+v", got, cmd)
	}
	if !bytes.Equal(got.Parameters, cmd.Parameters) {
		t.Fatalf("parameter mismatch: %v vs %v", got.Parameters, cmd.Parameters)
	}
}

func TestReadCommandStreamed(t *testing.T) {
	buf := &bytes.Buffer{}
	first := Command{Opcode: OpCreateApplet, AppNum: 1, Parameters: []uint8{3}}
	second := Command{Opcode: OpUpdateBar, AppNum: 1, Parameters: make([]uint8, BarLen)}
	if err := WriteCommand(buf, first); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := WriteCommand(buf, second); err != nil {
		t.Fatalf("write second: %v", err)
	}

	dec := json.NewDecoder(buf)
	got, err := ReadCommand(dec)
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	if got.Opcode != OpCreateApplet {
		t.Fatalf("expected CreateApplet, got %q", got.Opcode)
	}
	got, err = ReadCommand(dec)
	if err != nil {
		t.Fatalf("read second: %v", err)
	}
	if got.Opcode != OpUpdateBar {
		t.Fatalf("expected UpdateBar, got %q", got.Opcode)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cmd  Command
		want error
	}{
		{"create ok", Command{Opcode: OpCreateApplet, AppNum: 0, Parameters: []uint8{0}}, nil},
		{"grid ok", Command{Opcode: OpUpdateGrid, AppNum: 1, Parameters: make([]uint8, GridLen)}, nil},
		{"bar ok", Command{Opcode: OpUpdateBar, AppNum: 3, Parameters: make([]uint8, BarLen)}, nil},
		{"bad opcode", Command{Opcode: "Refresh", Parameters: nil}, ErrBadOpcode},
		{"app num high", Command{Opcode: OpCreateApplet, AppNum: 4, Parameters: []uint8{0}}, ErrBadAppNum},
		{"grid short", Command{Opcode: OpUpdateGrid, AppNum: 1, Parameters: make([]uint8, GridLen-1)}, ErrBadParamCount},
		{"bar long", Command{Opcode: OpUpdateBar, AppNum: 1, Parameters: make([]uint8, BarLen+1)}, ErrBadParamCount},
		{"create empty", Command{Opcode: OpCreateApplet, AppNum: 1, Parameters: nil}, ErrBadParamCount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cmd.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParametersEncodeAsNumberArray(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := Command{Opcode: OpCreateApplet, AppNum: 1, Parameters: []uint8{3}}
	if err := WriteCommand(buf, cmd); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// The wire format is a plain array of numbers, never base64.
	if !strings.Contains(buf.String(), `"parameters":[3]`) {
		t.Fatalf("unexpected wire encoding: %s", buf.String())
	}
}

func TestParametersRejectOutOfRangeValues(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"opcode":"UpdateBar","app_num":1,"parameters":[1,300]}`))
	_, err := ReadCommand(dec)
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected type error for value 300, got %v", err)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	for _, st := range []Status{StatusOK, StatusAppletExists, StatusBadSeparator, StatusUnknownFailure} {
		buf := &bytes.Buffer{}
		if err := WriteStatus(buf, st); err != nil {
			t.Fatalf("write status %d: %v", st, err)
		}
		if buf.Len() != 1 {
			t.Fatalf("status %d wrote %d bytes, want 1", st, buf.Len())
		}
		got, err := ReadStatus(buf)
		if err != nil {
			t.Fatalf("read status %d: %v", st, err)
		}
		if got != st {
			t.Fatalf("status mismatch: wrote %d, read %d", st, got)
		}
	}
}

func TestReadStatusClosedStream(t *testing.T) {
	if _, err := ReadStatus(bytes.NewReader(nil)); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF on empty stream, got %v", err)
	}
}

func TestStatusStrings(t *testing.T) {
	if StatusOK.String() != "success" {
		t.Fatalf("unexpected description for 0: %q", StatusOK.String())
	}
	if Status(99).String() == "" {
		t.Fatalf("unrecognised status must still describe itself")
	}
}
