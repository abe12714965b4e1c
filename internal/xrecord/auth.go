package xrecord

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

const (
	familyLocal    = 256
	familyWild     = 65535

	cookieAuthName = "MIT-MAGIC-COOKIE-1"
)

// authEntry is one record of an Xauthority file.
type authEntry struct {
	Family  uint16
	Address string
	Number  string
	Name    string
	Data    []byte
}

// authorityPath returns $XAUTHORITY or ~/.Xauthority.
func authorityPath() string {
	if p := os.Getenv("XAUTHORITY"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".Xauthority")
}

// readAuthority parses an Xauthority stream. Fields are big-endian
// length-prefixed byte strings.
func readAuthority(r io.Reader) ([]authEntry, error) {
	br := bufio.NewReader(r)
	var entries []authEntry
	for {
		var family uint16
		if err := binary.Read(br, binary.BigEndian, &family); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return nil, fmt.Errorf("failed to read authority family: %w", err)
		}

		var fields [4][]byte
		for i := range fields {
			b, err := readCounted(br)
			if err != nil {
				return nil, fmt.Errorf("failed to read authority entry: %w", err)
			}
			fields[i] = b
		}

		entries = append(entries, authEntry{
			Family:  family,
			Address: string(fields[0]),
			Number:  string(fields[1]),
			Name:    string(fields[2]),
			Data:    fields[3],
		})
	}
}

func readCounted(r io.Reader) ([]byte, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// findCookie picks the MIT-MAGIC-COOKIE-1 entry matching the display.
func findCookie(entries []authEntry, d Display, hostname string) ([]byte, bool) {
	number := strconv.Itoa(d.Number)
	for _, e := range entries {
		if e.Name != cookieAuthName {
			continue
		}
		if e.Number != "" && e.Number != number {
			continue
		}
		switch e.Family {
		case familyWild:
			return e.Data, true
		case familyLocal:
			if d.IsLocal() && e.Address == hostname {
				return e.Data, true
			}
		default:
			if !d.IsLocal() && e.Address == d.Host {
				return e.Data, true
			}
		}
	}
	return nil, false
}

// lookupAuth returns the authorization protocol name and data for d. A
// missing authority file is not an error: the server may allow the
// connection anyway.
func lookupAuth(d Display) (string, []byte) {
	path := authorityPath()
	if path == "" {
		return "", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", nil
	}
	defer f.Close()

	entries, err := readAuthority(f)
	if err != nil {
		return "", nil
	}
	hostname, _ := os.Hostname()
	if data, ok := findCookie(entries, d, hostname); ok {
		return cookieAuthName, data
	}
	return "", nil
}
