package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/open-teleop/steering/pkg/config"
	customlog "github.com/open-teleop/steering/pkg/log"
	"github.com/open-teleop/steering/pkg/zeromq"
)

func main() {
	configDir := flag.String("config", "config", "directory containing "+config.BootstrapFileName)
	connect := flag.String("connect", "", "publisher endpoint (defaults to zeromq.publish_bind_address on localhost)")
	flag.Parse()

	bootstrapCfg, err := config.LoadBootstrapConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load bootstrap config: %v\n", err)
		os.Exit(1)
	}

	log, err := customlog.NewLogrusLogger(bootstrapCfg.Logging.Level, bootstrapCfg.Logging.LogPath, "commandwatch.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	address := *connect
	if address == "" {
		address = connectAddress(bootstrapCfg.ZeroMQ.PublishBindAddress)
	}
	if address == "" {
		log.Fatalf("No publisher endpoint: pass -connect or set zeromq.publish_bind_address")
	}

	listener, err := zeromq.NewCommandListener(address, bootstrapCfg.ZeroMQ.Topic, log)
	if err != nil {
		log.Fatalf("Failed to subscribe to %s: %v", address, err)
	}
	defer listener.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("Watching %q on %s", bootstrapCfg.ZeroMQ.Topic, address)
	var last uint64
	listener.Listen(ctx, func(f zeromq.Frame) {
		if last != 0 && f.Seq > last+1 {
			log.Warnf("Missed %d command(s) before seq %d", f.Seq-last-1, f.Seq)
		}
		last = f.Seq
		log.WithField("session", f.SessionID).Infof("seq=%d %s at %s", f.Seq, f.Command, f.Timestamp.Format("15:04:05.000"))
	})
	log.Infof("Command watch stopped")
}

// connectAddress turns a bind endpoint such as tcp://*:5560 into one a
// subscriber on the same host can connect to.
func connectAddress(bind string) string {
	for _, wildcard := range []string{"*", "0.0.0.0"} {
		if strings.Contains(bind, "://"+wildcard+":") {
			return strings.Replace(bind, "://"+wildcard+":", "://localhost:", 1)
		}
	}
	return bind
}
