// The simulator impersonates a plant controller: it subscribes to the
// schedule topics, logs each received dispatch plan and acknowledges it,
// optionally with latency or random drops to exercise the publisher's
// retry and timeout handling.
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	paho "github.com/eclipse/paho.mqtt.golang"
)

func main() {
	cfg := parseFlags()
	if err := (&cfg).Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli, err := newMQTTClient(cfg.Broker, cfg.ClientID)
	if err != nil {
		log.Fatalf("mqtt connect: %v", err)
	}
	defer cli.Disconnect(250)

	strat := RandomAck{Delay: cfg.AckLatency, DropRate: cfg.DropRate}
	handler := func(_ paho.Client, msg paho.Message) {
		env, err := parseSchedule(msg.Payload())
		if err != nil {
			log.Printf("%v", err)
			return
		}
		log.Printf("schedule %s for %s: %d setpoints, %.1f kWh electric",
			env.CommandID, env.CaseName, len(env.Setpoints), totalEnergyKWh(env))
		go strat.Ack(ctx, cli, env.CaseName, env.CommandID)
	}
	if token := cli.Subscribe("plant/+/schedule", 1, handler); token.Wait() && token.Error() != nil {
		log.Fatalf("subscribe: %v", token.Error())
	}

	<-ctx.Done()
}
