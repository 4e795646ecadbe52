//go:build darwin || linux

package netpoll

import (
	"io"
	"net"
	"net/netip"
	"syscall"

	"github.com/frankli0324/go-fetch/internal/reactor"
	"golang.org/x/sys/unix"
)

// Socket is a non-blocking TCP connection owned by a Loop.
type Socket struct {
	l          *Loop
	fd         int
	connecting bool
	closed     bool

	onRead, onWrite func()
}

// Dial implements [reactor.Loop].
func (l *Loop) Dial(addr netip.AddrPort) (reactor.Socket, error) {
	var (
		domain = unix.AF_INET
		sa     unix.Sockaddr
	)
	ip := addr.Addr().Unmap()
	if ip.Is4() {
		sa = &unix.SockaddrInet4{Port: int(addr.Port()), Addr: ip.As4()}
	} else {
		domain = unix.AF_INET6
		sa6 := &unix.SockaddrInet6{Port: int(addr.Port()), Addr: ip.As16()}
		if z := ip.Zone(); z != "" {
			if ifi, err := net.InterfaceByName(z); err == nil {
				sa6.ZoneId = uint32(ifi.Index)
			}
		}
		sa = sa6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(fd)
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	if err := unix.Connect(fd, sa); err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return nil, err
	}

	s := &Socket{l: l, fd: fd, connecting: true}
	l.socks[s] = struct{}{}
	return s, nil
}

func (s *Socket) Read(p []byte) (int, error) {
	if s.closed {
		return 0, syscall.EBADF
	}
	n, err := unix.Read(s.fd, p)
	if err != nil {
		return 0, err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write reports a failed connect as the error stored in SO_ERROR.
func (s *Socket) Write(p []byte) (int, error) {
	if s.closed {
		return 0, syscall.EBADF
	}
	if s.connecting {
		errno, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			return 0, err
		}
		if errno != 0 {
			return 0, syscall.Errno(errno)
		}
		s.connecting = false
	}
	n, err := unix.Write(s.fd, p)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Socket) OnReadable(f func()) { s.onRead = f }
func (s *Socket) OnWritable(f func()) { s.onWrite = f }

func (s *Socket) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.onRead, s.onWrite = nil, nil
	delete(s.l.socks, s)
	return unix.Close(s.fd)
}

func (s *Socket) events() (ev int16) {
	if s.onRead != nil {
		ev |= unix.POLLIN
	}
	if s.onWrite != nil {
		ev |= unix.POLLOUT
	}
	return
}

// dispatch runs the callbacks made ready by revents. both are one-shot, a
// hangup or error wakes whichever side is waiting so it sees the failure.
func (s *Socket) dispatch(revents int16) {
	const failed = unix.POLLERR | unix.POLLHUP | unix.POLLNVAL
	if revents&(unix.POLLOUT|failed) != 0 && s.onWrite != nil {
		f := s.onWrite
		s.onWrite = nil
		f()
	}
	if s.closed {
		return
	}
	if revents&(unix.POLLIN|failed) != 0 && s.onRead != nil {
		f := s.onRead
		s.onRead = nil
		f()
	}
}
