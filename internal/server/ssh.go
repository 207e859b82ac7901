// Package server serves boards over SSH.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/wish/v2"
	"charm.land/wish/v2/bubbletea"
	"charm.land/wish/v2/logging"
	"github.com/Gaurav-Gosain/gridboard/internal/app"
	"github.com/Gaurav-Gosain/gridboard/internal/config"
	"github.com/Gaurav-Gosain/gridboard/internal/store"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	Host    string
	Port    string
	KeyPath string
	// Board, when set, is the board every connection opens.
	Board  string
	Store  store.Store
	Config *config.UserConfig
	Logger *log.Logger
}

// genericUsers never name a board.
var genericUsers = map[string]bool{"": true, "gridboard": true, "root": true, "anonymous": true}

// StartSSHServer runs the SSH server until ctx is cancelled. Every session
// gets its own board model; sessions that open the same board share it
// through the store and see each other's commits.
func StartSSHServer(ctx context.Context, cfg *SSHServerConfig) error {
	if cfg.Store == nil {
		return errors.New("ssh server needs a store")
	}
	if cfg.Config == nil {
		cfg.Config = config.DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("ssh")

	hostKeyPath := cfg.KeyPath
	if hostKeyPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		hostKeyPath = filepath.Join(homeDir, ".ssh", "gridboard_host_key")
	}

	server, err := wish.NewServer(
		wish.WithAddress(net.JoinHostPort(cfg.Host, cfg.Port)),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(teaHandler(cfg, logger)),
			logging.Middleware(),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create SSH server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting SSH server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ssh server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down SSH server")
	return server.Shutdown(context.Background())
}

func teaHandler(cfg *SSHServerConfig, logger *log.Logger) bubbletea.Handler {
	return func(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
		if _, _, active := sess.Pty(); !active {
			wish.Fatalln(sess, "gridboard needs a terminal; connect with ssh -t")
			return nil, nil
		}

		name := sessionBoard(sess.User(), sess.Command(), cfg.Board, cfg.Config.Storage.Board)
		if err := store.CheckName(name); err != nil {
			wish.Fatalln(sess, err.Error())
			return nil, nil
		}
		logger.Info("session opened", "user", sess.User(), "board", name, "remote", sess.RemoteAddr())

		b := app.NewBoard(app.Options{
			Config:    cfg.Config,
			Store:     cfg.Store,
			BoardName: name,
			Logger:    logger,
		})
		go func() {
			<-sess.Context().Done()
			b.Close()
			logger.Debug("session closed", "board", name)
		}()

		return b, []tea.ProgramOption{
			tea.WithFPS(config.NormalFPS),
			tea.WithFilter(app.FilterMouseMotion),
		}
	}
}

// sessionBoard picks the board a connection opens: the server's fixed
// board, then "attach <board>", then a non-generic user name, then the
// configured default.
func sessionBoard(user string, cmd []string, fixed, fallback string) string {
	if fixed != "" {
		return fixed
	}
	if action, args := parseSSHCommand(cmd); action == "attach" && len(args) > 0 {
		return args[0]
	}
	if !genericUsers[strings.ToLower(user)] {
		return user
	}
	return fallback
}

func parseSSHCommand(cmd []string) (action string, args []string) {
	if len(cmd) == 0 {
		return "", nil
	}
	action = strings.ToLower(cmd[0])
	if len(cmd) > 1 {
		args = cmd[1:]
	}
	return action, args
}
