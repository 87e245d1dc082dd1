package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"go-repair-shop/internal/apiclient"
	"go-repair-shop/internal/config"
	"go-repair-shop/internal/guard"
	"go-repair-shop/internal/logger"
	"go-repair-shop/internal/model"
	"go-repair-shop/internal/notify"
	"go-repair-shop/internal/page"
	"go-repair-shop/internal/session"
)

// Dependencies is the composition root shared by every command.
type Dependencies struct {
	Dir        string
	ConfigPath string
	Config     config.Client
	Store      session.Store
	API        *apiclient.Client
	Notify     *notify.Center
	Guard      *guard.Guard
	Logger     *slog.Logger

	logFile     io.Closer
	unsubscribe func()
}

func (d *Dependencies) init(cmd *cobra.Command, flags *globalFlags) error {
	dir := flags.configDir
	if dir == "" {
		var err error
		if dir, err = config.ClientDir(); err != nil {
			return err
		}
	}
	d.Dir = dir
	d.ConfigPath = config.ClientConfigPath(dir)

	cfg, err := config.LoadClient(dir, d.ConfigPath)
	if err != nil {
		return err
	}
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}
	if flags.pageSize > 0 {
		cfg.PageSize = flags.pageSize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.Config = cfg

	d.Logger = d.openLog(cmd, flags.verbose)

	store, err := session.NewFileStore(cfg.SessionFile)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	d.Store = store
	d.Guard = guard.New(store, "shopctl login")

	d.Notify = notify.NewCenter(cfg.NotifyDuration)
	d.unsubscribe = d.Notify.Subscribe(printNotifications(cmd.ErrOrStderr()))

	d.API, err = apiclient.New(cfg.APIURL, store, apiclient.Options{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		Notifier:          d.Notify,
		Logger:            d.Logger,
		RequestsPerSecond: cfg.RequestsPerSecond,
		UserAgent:         "shopctl/" + version,
	})
	return err
}

// openLog writes plain PrettyHandler lines to the rotating log file and, with
// --verbose, mirrors them to stderr.
func (d *Dependencies) openLog(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := logger.ParseLevel(d.Config.LogLevel)
	var sinks []io.Writer

	if d.Config.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   d.Config.LogFile,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     28,
		}
		d.logFile = rotating
		sinks = append(sinks, rotating)
	}
	if verbose {
		sinks = append(sinks, cmd.ErrOrStderr())
		level = slog.LevelDebug
	}
	if len(sinks) == 0 {
		sinks = append(sinks, io.Discard)
	}

	log := slog.New(logger.NewPrettyHandler(io.MultiWriter(sinks...), &logger.Options{
		Level:   level,
		NoColor: true,
	}))
	slog.SetDefault(log)
	return log
}

func (d *Dependencies) close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
	}
	if d.Notify != nil {
		d.Notify.Close()
	}
	if d.logFile != nil {
		_ = d.logFile.Close()
	}
}

// requireSession applies the guard: no stored token, or none of roles held,
// stops the command with a hint to log in.
func (d *Dependencies) requireSession(roles ...model.Role) (session.Session, error) {
	decision := d.Guard.Check(roles...)
	if decision.Allowed {
		return decision.Session, nil
	}
	switch decision.Reason {
	case guard.ReasonRole:
		return decision.Session, fmt.Errorf("%w: this command needs the %s role", model.ErrForbidden, rolesLabel(roles))
	default:
		return decision.Session, fmt.Errorf("%w: not signed in, run `%s`", model.ErrUnauthorized, decision.Redirect)
	}
}

func (d *Dependencies) services() page.Services {
	return page.Services{
		Clients:    d.API.Clients(),
		Vehicles:   d.API.Vehicles(),
		WorkOrders: d.API.WorkOrders(),
	}
}

// newPage opens a controller of kind sized by the profile.
func (d *Dependencies) newPage(kind page.Kind, onChange func(page.Snapshot)) *page.Controller {
	return page.New(d.services(), page.Options{
		Kind:     kind,
		Notifier: d.Notify,
		Logger:   d.Logger,
		Debounce: d.Config.Debounce,
		PageSize: d.Config.PageSize,
		OnChange: onChange,
	})
}

// interactive reports whether prompts can be shown.
func interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func rolesLabel(roles []model.Role) string {
	if len(roles) == 0 {
		return "any"
	}
	out := string(roles[0])
	for _, r := range roles[1:] {
		out += " or " + string(r)
	}
	return out
}

var errAborted = errors.New("aborted")
