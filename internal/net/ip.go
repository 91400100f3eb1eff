package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// LinkScheme prefixes the share links handed to viewers.
const LinkScheme = "freehand"

var ErrBadLink = errors.New("net: invalid share link")

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route out; look at the interfaces instead.
		return getLocalIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// getLocalIPFallback is used on networks without internet access.
func getLocalIPFallback() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}
	return "127.0.0.1", nil
}

// ShareLink formats the link a viewer passes on its command line.
func ShareLink(host string, port int) string {
	return fmt.Sprintf("%s://%s", LinkScheme, net.JoinHostPort(host, strconv.Itoa(port)))
}

// ParseShareLink returns the host:port a share link points at.
func ParseShareLink(link string) (string, error) {
	if !strings.HasPrefix(link, LinkScheme+"://") {
		return "", fmt.Errorf("%w: %q", ErrBadLink, link)
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadLink, err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil || host == "" {
		return "", fmt.Errorf("%w: %q", ErrBadLink, link)
	}
	if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
		return "", fmt.Errorf("%w: port %q", ErrBadLink, port)
	}
	return u.Host, nil
}
