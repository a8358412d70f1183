package adapters

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"sprinkler-controller/application"

	"github.com/rs/zerolog"
)

const (
	OTADefaultAddr        = ":8266"
	OTADefaultMaxImage    = 64 << 20
	OTADefaultRecvTimeout = 2 * time.Minute
)

type UpdateListenerParams struct {
	Addr       string
	StagingDir string

	MaxImageSize int64
	RecvTimeout  time.Duration

	Log zerolog.Logger
}

func (p *UpdateListenerParams) EnsureDefaults() {
	if p.Addr == "" {
		p.Addr = OTADefaultAddr
	}
	if p.MaxImageSize == 0 {
		p.MaxImageSize = OTADefaultMaxImage
	}
	if p.RecvTimeout == 0 {
		p.RecvTimeout = OTADefaultRecvTimeout
	}
}

type otaResult struct {
	path string
	size int64
	err  error
}

// UpdateListener receives firmware images pushed over TCP and stages them on
// disk. Reception runs on a background goroutine; Handle only drains
// completion events, so the control loop never blocks on a slow sender.
// Installing a staged image is someone else's job.
type UpdateListener struct {
	params UpdateListenerParams

	ln      net.Listener
	results chan otaResult

	log zerolog.Logger
}

func NewUpdateListener(params UpdateListenerParams) (*UpdateListener, error) {
	params.EnsureDefaults()

	ln, err := net.Listen("tcp", params.Addr)
	if err != nil {
		return nil, fmt.Errorf("ota listen %s: %w", params.Addr, err)
	}

	u := &UpdateListener{
		params:  params,
		ln:      ln,
		results: make(chan otaResult, 4),
		log:     params.Log,
	}
	go u.acceptLoop()

	u.log.Info().Str("addr", params.Addr).Msg("ota listener started")
	return u, nil
}

// Handle drains completed receptions. Non-blocking.
func (u *UpdateListener) Handle() {
	for {
		select {
		case res := <-u.results:
			if res.err != nil {
				u.log.Warn().Err(res.err).Msg("firmware reception failed")
				continue
			}
			u.log.Info().Str("path", res.path).Int64("size", res.size).
				Msg("firmware image staged, awaiting install")
		default:
			return
		}
	}
}

// Close stops accepting firmware uploads.
func (u *UpdateListener) Close() error {
	return u.ln.Close()
}

// Addr returns the bound listen address.
func (u *UpdateListener) Addr() net.Addr {
	return u.ln.Addr()
}

func (u *UpdateListener) acceptLoop() {
	for {
		conn, err := u.ln.Accept()
		if err != nil {
			return
		}
		u.receive(conn)
	}
}

func (u *UpdateListener) receive(conn net.Conn) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(u.params.RecvTimeout))

	path := filepath.Join(u.params.StagingDir, fmt.Sprintf("firmware-%d.bin", time.Now().Unix()))
	f, err := os.Create(path)
	if err != nil {
		u.post(otaResult{err: fmt.Errorf("create staging file: %w", err)})
		return
	}

	n, err := io.Copy(f, io.LimitReader(conn, u.params.MaxImageSize))
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		u.post(otaResult{err: fmt.Errorf("receive firmware: %w", err)})
		return
	}

	u.post(otaResult{path: path, size: n})
}

func (u *UpdateListener) post(res otaResult) {
	select {
	case u.results <- res:
	default:
		// result queue full, the log is all we have
		u.log.Warn().Msg("ota result dropped")
	}
}

var _ application.UpdateHandler = &UpdateListener{}
