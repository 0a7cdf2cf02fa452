// Command emberd runs the IRC daemon: load configuration, start every
// configured listener, and drive the event loop until shut down.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/emberircd/emberd/internal/config"
	"github.com/emberircd/emberd/internal/ircd"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const version = "emberd 0.1.0"

// exit codes (§6)
const (
	exitOK               = 0
	exitConfigError      = 1
	exitSocketEngineInit = 2
	exitPIDFileError     = 3
)

// Args are the parsed CLI flags (§2.1 O), grounded on the teacher's getArgs.
type Args struct {
	ConfigFile string
	NoFork     bool
	Debug      bool
	Version    bool
}

func getArgs() (Args, error) {
	configFile := flag.String("config", "", "Configuration file.")
	nofork := flag.Bool("nofork", false, "Do not daemonise; run in the foreground.")
	debug := flag.Bool("debug", false, "Enable debug logging.")
	showVersion := flag.Bool("version", false, "Print version and exit.")

	flag.Parse()

	if *showVersion {
		return Args{Version: true}, nil
	}

	if *configFile == "" {
		flag.PrintDefaults()
		return Args{}, fmt.Errorf("you must provide a configuration file")
	}

	configPath, err := filepath.Abs(*configFile)
	if err != nil {
		return Args{}, fmt.Errorf("unable to determine absolute path to config file: %s: %s", *configFile, err)
	}

	return Args{ConfigFile: configPath, NoFork: *nofork, Debug: *debug}, nil
}

func main() {
	log.SetFlags(log.LstdFlags)

	args, err := getArgs()
	if err != nil {
		log.Print(err)
		os.Exit(exitConfigError)
	}
	if args.Version {
		fmt.Println(version)
		os.Exit(exitOK)
	}

	cfg, err := config.Load(args.ConfigFile)
	if err != nil {
		log.Printf("error loading configuration: %+v", err)
		os.Exit(exitConfigError)
	}

	pidPath := "emberd.pid"
	if err := writePIDFile(pidPath); err != nil {
		log.Printf("error writing PID file: %+v", err)
		os.Exit(exitPIDFileError)
	}
	defer os.Remove(pidPath)

	srv := ircd.New(cfg, log.Default(), prometheus.DefaultRegisterer)

	for _, lc := range cfg.Listeners {
		if err := srv.Listen(lc); err != nil {
			log.Printf("error starting socket engine: %+v", err)
			os.Exit(exitSocketEngineInit)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				if err := srv.Rehash(args.ConfigFile); err != nil {
					log.Printf("rehash failed: %+v", err)
				} else {
					log.Print("rehashed configuration")
				}
			default:
				srv.Shutdown()
				return
			}
		}
	}()

	log.Printf("emberd listening, config=%s", args.ConfigFile)
	srv.Run()
	log.Print("Server shutdown cleanly.")
}

func writePIDFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("PID file %q already exists", path)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}
