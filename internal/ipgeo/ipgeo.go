// Package ipgeo resolves visitor IP addresses to countries using a MaxMind
// MMDB file.
package ipgeo

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/oschwald/maxminddb-golang/v2"
)

// Special country codes for addresses no database knows.
const (
	Local     = "local"
	Tailscale = "tailscale"
)

// Checker resolves IP addresses to ISO 3166-1 alpha-2 country codes. A
// Checker without a database only classifies special ranges.
type Checker struct {
	reader *maxminddb.Reader
}

// Open opens an MMDB file. An empty path yields a Checker without database.
func Open(dbPath string) (*Checker, error) {
	if dbPath == "" {
		return &Checker{}, nil
	}
	r, err := maxminddb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open geo database: %w", err)
	}
	return &Checker{reader: r}, nil
}

// Close releases the database.
func (c *Checker) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	RegisteredCountry struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"registered_country"`
}

// tailscalePrefix is the CGNAT range Tailscale hands out, 100.64.0.0/10.
var tailscalePrefix = netip.MustParsePrefix("100.64.0.0/10")

// CountryCode returns the country of ip, which may carry a port. Loopback,
// private, link-local and unspecified addresses are Local; the Tailscale
// range is Tailscale. Unknown addresses yield "".
func (c *Checker) CountryCode(ip string) string {
	addr, ok := parse(ip)
	if !ok {
		return ""
	}
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() || addr.IsLinkLocalUnicast() {
		return Local
	}
	if tailscalePrefix.Contains(addr) {
		return Tailscale
	}
	if c == nil || c.reader == nil {
		return ""
	}
	var rec countryRecord
	if err := c.reader.Lookup(addr).Decode(&rec); err != nil {
		return ""
	}
	if rec.Country.ISOCode != "" {
		return rec.Country.ISOCode
	}
	return rec.RegisteredCountry.ISOCode
}

func parse(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	addr, err := netip.ParseAddr(strings.Trim(s, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
