package xrecord

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const x11TCPPort = 6000

// Display describes an X server endpoint parsed from a DISPLAY string.
type Display struct {
	Name     string // the original DISPLAY value
	Protocol string // "unix" or "tcp"
	Host     string
	Number   int
	Screen   int
	Socket   string // unix socket path, empty for tcp
}

// ParseDisplay parses name, falling back to $DISPLAY when name is empty.
// Accepted forms are ":N", ":N.S", "host:N.S", "unix:N", "tcp/host:N" and
// absolute socket paths such as "/tmp/launch-xyz/org.xquartz:0".
func ParseDisplay(name string) (Display, error) {
	if name == "" {
		name = os.Getenv("DISPLAY")
	}
	if name == "" {
		return Display{}, fmt.Errorf("no display given and DISPLAY is not set")
	}

	d := Display{Name: name}
	colon := strings.LastIndexByte(name, ':')
	if colon < 0 {
		return Display{}, fmt.Errorf("invalid display %q: missing ':'", name)
	}

	host := name[:colon]
	number := name[colon+1:]
	if dot := strings.IndexByte(number, '.'); dot >= 0 {
		screen, err := strconv.Atoi(number[dot+1:])
		if err != nil || screen < 0 {
			return Display{}, fmt.Errorf("invalid display %q: bad screen number", name)
		}
		d.Screen = screen
		number = number[:dot]
	}
	n, err := strconv.Atoi(number)
	if err != nil || n < 0 {
		return Display{}, fmt.Errorf("invalid display %q: bad display number", name)
	}
	d.Number = n

	switch {
	case strings.HasPrefix(host, "/"):
		d.Protocol = "unix"
		d.Socket = host
	default:
		if slash := strings.IndexByte(host, '/'); slash >= 0 {
			d.Protocol = host[:slash]
			host = host[slash+1:]
		}
		d.Host = host
		if d.Protocol == "" {
			if host == "" || host == "unix" {
				d.Protocol = "unix"
			} else {
				d.Protocol = "tcp"
			}
		}
		if d.Protocol == "unix" {
			d.Host = ""
			d.Socket = fmt.Sprintf("/tmp/.X11-unix/X%d", d.Number)
		}
	}

	if d.Protocol != "unix" && d.Protocol != "tcp" {
		return Display{}, fmt.Errorf("invalid display %q: unsupported protocol %q", name, d.Protocol)
	}
	return d, nil
}

// Address returns the network and address to dial.
func (d Display) Address() (network, address string) {
	if d.Protocol == "unix" {
		return "unix", d.Socket
	}
	return "tcp", net.JoinHostPort(d.Host, strconv.Itoa(x11TCPPort+d.Number))
}

// IsLocal reports whether the display lives on this machine.
func (d Display) IsLocal() bool {
	return d.Protocol == "unix" || d.Host == "" || d.Host == "localhost" || d.Host == "127.0.0.1"
}

// Dial opens a raw connection to the display.
func (d Display) Dial(timeout time.Duration) (net.Conn, error) {
	network, address := d.Address()
	conn, err := net.DialTimeout(network, address, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server at %s: %w", address, err)
	}
	return conn, nil
}
