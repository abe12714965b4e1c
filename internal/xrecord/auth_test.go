package xrecord

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func encodeAuth(entries []authEntry) []byte {
	var buf bytes.Buffer
	put := func(b []byte) {
		binary.Write(&buf, binary.BigEndian, uint16(len(b)))
		buf.Write(b)
	}
	for _, e := range entries {
		binary.Write(&buf, binary.BigEndian, e.Family)
		put([]byte(e.Address))
		put([]byte(e.Number))
		put([]byte(e.Name))
		put(e.Data)
	}
	return buf.Bytes()
}

func TestReadAuthorityRoundTrip(t *testing.T) {
	want := []authEntry{
		{Family: familyLocal, Address: "box", Number: "0", Name: cookieAuthName, Data: []byte{1, 2, 3}},
		{Family: familyWild, Address: "", Number: "", Name: cookieAuthName, Data: []byte{9}},
	}
	got, err := readAuthority(bytes.NewReader(encodeAuth(want)))
	if err != nil {
		t.Fatalf("readAuthority error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	if got[0].Address != "box" || !bytes.Equal(got[0].Data, []byte{1, 2, 3}) {
		t.Fatalf("entry 0 = %+v", got[0])
	}
}

func TestReadAuthorityTruncated(t *testing.T) {
	data := encodeAuth([]authEntry{{Family: familyLocal, Address: "box", Number: "0", Name: cookieAuthName, Data: []byte{1}}})
	if _, err := readAuthority(bytes.NewReader(data[:len(data)-1])); err == nil {
		t.Fatal("expected error for truncated authority")
	}
}

func TestFindCookie(t *testing.T) {
	local, _ := ParseDisplay(":1")
	remote, _ := ParseDisplay("far:0")

	entries := []authEntry{
		{Family: familyLocal, Address: "box", Number: "0", Name: cookieAuthName, Data: []byte("zero")},
		{Family: familyLocal, Address: "box", Number: "1", Name: "XDM-AUTHORIZATION-1", Data: []byte("xdm")},
		{Family: familyLocal, Address: "box", Number: "1", Name: cookieAuthName, Data: []byte("one")},
		{Family: 0, Address: "far", Number: "0", Name: cookieAuthName, Data: []byte("far")},
	}

	if data, ok := findCookie(entries, local, "box"); !ok || string(data) != "one" {
		t.Fatalf("local lookup = %q %v", data, ok)
	}
	if data, ok := findCookie(entries, remote, "box"); !ok || string(data) != "far" {
		t.Fatalf("remote lookup = %q %v", data, ok)
	}
	if _, ok := findCookie(entries, local, "other"); ok {
		t.Fatal("expected no match for another hostname")
	}
}

func TestLookupAuthReadsXAUTHORITY(t *testing.T) {
	host, err := os.Hostname()
	if err != nil {
		t.Skip("no hostname")
	}
	path := filepath.Join(t.TempDir(), "xauth")
	data := encodeAuth([]authEntry{{Family: familyLocal, Address: host, Number: "4", Name: cookieAuthName, Data: []byte("secret")}})
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XAUTHORITY", path)

	d, _ := ParseDisplay(":4")
	name, cookie := lookupAuth(d)
	if name != cookieAuthName || string(cookie) != "secret" {
		t.Fatalf("lookupAuth = %q %q", name, cookie)
	}

	t.Setenv("XAUTHORITY", filepath.Join(t.TempDir(), "missing"))
	if name, _ := lookupAuth(d); name != "" {
		t.Fatalf("missing file should yield no auth, got %q", name)
	}
}
