// Package bus is the local control channel between the CLI and a running bot:
// a unix socket taking one-byte commands and a pid file guarding against a
// second instance.
package bus

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const SockName = "control.sock"
const PidName = "scribebot.pid"
const ProtoVer = "0.2"

// EnvRuntimeDir overrides the directory holding the socket and pid file.
const EnvRuntimeDir = "SCRIBEBOT_RUNTIME_DIR"

const (
	CmdStatus  byte = 's'
	CmdJobs    byte = 'j'
	CmdReload  byte = 'r'
	CmdVersion byte = 'v'
	CmdQuit    byte = 'q'
)

const dialTimeout = 2 * time.Second

// ~/.cache/scribebot
func runtimeDir() (string, error) {
	if dir := os.Getenv(EnvRuntimeDir); dir != "" {
		return filepath.Abs(dir)
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "scribebot"), nil
}

func getSockPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SockName), nil
}

func getPidPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PidName), nil
}

// SockPath returns ~/.cache/scribebot/control.sock unless overridden.
func SockPath() (string, error) { return getSockPath() }

// PidPath returns ~/.cache/scribebot/scribebot.pid unless overridden.
func PidPath() (string, error) { return getPidPath() }

type socketManager struct {
	path string
}

func (s *socketManager) listen() (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(s.path) // stale socket from last run
	return net.Listen("unix", s.path)
}

func (s *socketManager) dial() (net.Conn, error) {
	return net.DialTimeout("unix", s.path, dialTimeout)
}

func (s *socketManager) send(cmd byte) (string, error) {
	c, err := s.dial()
	if err != nil {
		return "", err
	}
	defer c.Close()

	if _, err := c.Write([]byte{cmd, '\n'}); err != nil {
		return "", err
	}
	return bufio.NewReader(c).ReadString('\n')
}

func defaultSocket() (*socketManager, error) {
	p, err := getSockPath()
	if err != nil {
		return nil, err
	}
	return &socketManager{path: p}, nil
}

func Listen() (net.Listener, error) {
	s, err := defaultSocket()
	if err != nil {
		return nil, err
	}
	return s.listen()
}

func Dial() (net.Conn, error) {
	s, err := defaultSocket()
	if err != nil {
		return nil, err
	}
	return s.dial()
}

// SendCommand sends cmd to the running bot and returns its one-line reply.
func SendCommand(cmd byte) (string, error) {
	s, err := defaultSocket()
	if err != nil {
		return "", err
	}
	return s.send(cmd)
}

// ParseReply splits "STATUS a=1 b=two" into its kind and key/value fields.
func ParseReply(line string) (string, map[string]string) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return "", nil
	}
	kv := make(map[string]string, len(fields)-1)
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(f, "=")
		if ok {
			kv[k] = v
		}
	}
	return fields[0], kv
}

type pidManager struct {
	path string
}

func (p *pidManager) create() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (p *pidManager) remove() error {
	return os.Remove(p.path)
}

// checkExisting fails when the pid file names a live process; a stale or
// unreadable file is removed.
func (p *pidManager) checkExisting() error {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		_ = os.Remove(p.path)
		return nil
	}
	if !p.isProcessAlive(pid) {
		_ = os.Remove(p.path)
		return nil
	}
	return fmt.Errorf("daemon already running with PID %d", pid)
}

func (p *pidManager) isProcessAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func defaultPid() (*pidManager, error) {
	p, err := getPidPath()
	if err != nil {
		return nil, err
	}
	return &pidManager{path: p}, nil
}

func CheckExistingDaemon() error {
	p, err := defaultPid()
	if err != nil {
		return err
	}
	return p.checkExisting()
}

func CreatePidFile() error {
	p, err := defaultPid()
	if err != nil {
		return err
	}
	return p.create()
}

func RemovePidFile() error {
	p, err := defaultPid()
	if err != nil {
		return err
	}
	return p.remove()
}
