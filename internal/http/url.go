package http

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"

	errs "github.com/frankli0324/go-fetch/internal/errors"
	"golang.org/x/net/idna"
)

var schemes = map[string]uint16{
	"http": 80, "https": 443,
}

// URL is the parsed form of an absolute fetch target. it is not modified
// after [ParseURL] returns.
type URL struct {
	Scheme string
	Host   string // without brackets for IPv6 literals
	Port   uint16
	Path   string // path and query, fragment dropped, never empty

	explicitPort bool
}

// ParseURL accepts http:// and https:// URLs only, the scheme prefix is
// matched case-insensitively. the rest is left to [net/url.Parse].
func ParseURL(raw string) (*URL, error) {
	scheme := ""
	for s := range schemes {
		if len(raw) >= len(s)+3 && strings.EqualFold(raw[:len(s)+3], s+"://") {
			scheme = s
			break
		}
	}
	if scheme == "" {
		s, _, _ := strings.Cut(raw, ":")
		return nil, errs.ErrUnsupportedScheme.Wrap(errors.New("scheme " + strconv.Quote(s)))
	}

	u, err := url.Parse(scheme + raw[len(scheme):])
	if err != nil {
		return nil, errs.ErrInvalidURL.Wrap(err)
	}
	host := u.Hostname()
	if host == "" {
		return nil, errs.ErrInvalidURL.Wrap(url.InvalidHostError("empty host"))
	}
	if !isASCII(host) {
		if host, err = idna.Lookup.ToASCII(host); err != nil {
			return nil, errs.ErrInvalidURL.Wrap(err)
		}
	}

	res := &URL{Scheme: scheme, Host: host, Port: schemes[scheme], Path: u.RequestURI()}
	if p := u.Port(); p != "" {
		port, err := strconv.ParseUint(p, 10, 16)
		if err != nil || port == 0 {
			return nil, errs.ErrInvalidURL.Wrap(url.InvalidHostError(u.Host))
		}
		res.Port, res.explicitPort = uint16(port), true
	}
	return res, nil
}

// Authority is the value sent in the Host header: the host, with the port
// appended only when it was given explicitly and is not the default.
func (u *URL) Authority() string {
	if u.explicitPort && u.Port != schemes[u.Scheme] {
		return net.JoinHostPort(u.Host, strconv.Itoa(int(u.Port)))
	}
	if strings.IndexByte(u.Host, ':') >= 0 {
		return "[" + u.Host + "]"
	}
	return u.Host
}

func (u *URL) String() string {
	return u.Scheme + "://" + u.Authority() + u.Path
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
