// Package main - agitator
// Load generator: many concurrent host connections flooding the server with
// pawn snapshots, observations and clock advances.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/engine"
	"github.com/MRamiBalles/murmur/internal/network"
)

// Config for the agitator
type Config struct {
	ServerURL      string
	NumClients     int
	NumPawns       int
	ActionInterval time.Duration
	TestDuration   time.Duration
}

// Stats tracks performance metrics
type Stats struct {
	MessagesSent     int64
	MessagesReceived int64
	Errors           int64
	Latencies        []time.Duration
	mu               sync.Mutex
}

var interactions = []situation.InteractionType{
	situation.InteractionShower,
	situation.InteractionBath,
	situation.InteractionSauna,
	situation.InteractionSwimming,
	situation.InteractionChanging,
	situation.InteractionSleeping,
	situation.InteractionNaked,
	situation.InteractionSlipUp,
}

func main() {
	// Parse flags
	serverURL := flag.String("url", "ws://localhost:8090/ws", "WebSocket server URL")
	numClients := flag.Int("clients", 50, "Number of concurrent host connections")
	numPawns := flag.Int("pawns", 20, "Number of pawns to register")
	interval := flag.Duration("interval", 100*time.Millisecond, "Message interval per client")
	duration := flag.Duration("duration", 60*time.Second, "Test duration")
	flag.Parse()

	config := Config{
		ServerURL:      *serverURL,
		NumClients:     *numClients,
		NumPawns:       *numPawns,
		ActionInterval: *interval,
		TestDuration:   *duration,
	}

	fmt.Println("=========================================")
	fmt.Println("AGITATOR - Host load generator")
	fmt.Println("=========================================")
	fmt.Printf("Server: %s\n", config.ServerURL)
	fmt.Printf("Clients: %d\n", config.NumClients)
	fmt.Printf("Pawns: %d\n", config.NumPawns)
	fmt.Printf("Interval: %v\n", config.ActionInterval)
	fmt.Printf("Duration: %v\n", config.TestDuration)
	fmt.Println("=========================================")

	// Setup graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), config.TestDuration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping...")
		cancel()
	}()

	if err := seedPawns(ctx, config); err != nil {
		log.Fatalf("seeding pawns: %v", err)
	}

	stats := runStressTest(ctx, config)
	printResults(stats, config)
}

func message(typ string, payload interface{}) (network.HostMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return network.HostMessage{}, fmt.Errorf("encode %s: %w", typ, err)
	}
	return network.HostMessage{Type: typ, Payload: raw}, nil
}

// seedPawns registers the colony over one connection.
func seedPawns(ctx context.Context, config Config) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for i := 1; i <= config.NumPawns; i++ {
		g := pawn.GenderFemale
		if i%2 == 0 {
			g = pawn.GenderMale
		}
		p := pawn.NewPawn(pawn.ID(i), fmt.Sprintf("Pawn%02d", i), g, 18+rand.Intn(50))
		p.Topless = rand.Intn(2) == 0
		p.Bottomless = rand.Intn(3) == 0
		msg, err := message(network.MsgPawnUpsert, p)
		if err != nil {
			return err
		}
		if err := conn.WriteJSON(msg); err != nil {
			return err
		}
	}
	return nil
}

func runStressTest(ctx context.Context, config Config) *Stats {
	stats := &Stats{
		Latencies: make([]time.Duration, 0, 10000),
	}

	var wg sync.WaitGroup

	fmt.Println("\nStarting clients...")

	for i := 0; i < config.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runClient(ctx, clientID, config, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}

	fmt.Printf("All %d clients started\n\n", config.NumClients)

	// Progress updates
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sent := atomic.LoadInt64(&stats.MessagesSent)
				recv := atomic.LoadInt64(&stats.MessagesReceived)
				errs := atomic.LoadInt64(&stats.Errors)
				fmt.Printf("Progress: Sent=%d Recv=%d Errors=%d\n", sent, recv, errs)
			}
		}
	}()

	wg.Wait()
	return stats
}

func runClient(ctx context.Context, clientID int, config Config, stats *Stats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		log.Printf("Client %d: Connection failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	// Start receiver goroutine
	go func() {
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&stats.MessagesReceived, 1)
		}
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(clientID)))
	ticker := time.NewTicker(config.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg, err := randomMessage(rng, clientID, config.NumPawns)
			if err != nil {
				log.Printf("Client %d: %v", clientID, err)
				atomic.AddInt64(&stats.Errors, 1)
				continue
			}
			start := time.Now()

			if err := conn.WriteJSON(msg); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}

			latency := time.Since(start)
			atomic.AddInt64(&stats.MessagesSent, 1)

			stats.mu.Lock()
			stats.Latencies = append(stats.Latencies, latency)
			stats.mu.Unlock()
		}
	}
}

// randomMessage is mostly observations; client 0 also drives the clock.
func randomMessage(rng *rand.Rand, clientID, pawns int) (network.HostMessage, error) {
	if clientID == 0 && rng.Intn(4) == 0 {
		return message(network.MsgAdvance, engine.AdvancePayload{Ticks: 60})
	}
	return message(network.MsgObservation, situation.Observation{
		Observer:    pawn.ID(1 + rng.Intn(pawns)),
		Observed:    pawn.ID(1 + rng.Intn(pawns)),
		Interaction: interactions[rng.Intn(len(interactions))],
		Aware:       rng.Intn(2) == 0,
	})
}

func printResults(stats *Stats, config Config) {
	fmt.Println("\n=========================================")
	fmt.Println("STRESS TEST RESULTS")
	fmt.Println("=========================================")

	sent := atomic.LoadInt64(&stats.MessagesSent)
	recv := atomic.LoadInt64(&stats.MessagesReceived)
	errs := atomic.LoadInt64(&stats.Errors)

	fmt.Printf("Messages Sent:     %d\n", sent)
	fmt.Printf("Messages Received: %d\n", recv)
	fmt.Printf("Errors:            %d\n", errs)
	fmt.Printf("Error Rate:        %.2f%%\n", float64(errs)/float64(sent+1)*100)

	// Calculate throughput
	throughput := float64(sent) / config.TestDuration.Seconds()
	fmt.Printf("Throughput:        %.2f msg/sec\n", throughput)

	// Latency stats
	if len(stats.Latencies) > 0 {
		var total time.Duration
		var min, max time.Duration = stats.Latencies[0], stats.Latencies[0]

		for _, l := range stats.Latencies {
			total += l
			if l < min {
				min = l
			}
			if l > max {
				max = l
			}
		}

		avg := total / time.Duration(len(stats.Latencies))

		fmt.Printf("\nLatency:\n")
		fmt.Printf("  Min: %v\n", min)
		fmt.Printf("  Avg: %v\n", avg)
		fmt.Printf("  Max: %v\n", max)
	}

	fmt.Println("\n-----------------------------------------")
	if errs == 0 {
		fmt.Println("PASSED: server kept up with the load")
	} else if float64(errs)/float64(sent+1) < 0.05 {
		fmt.Println("WARNING: some errors detected")
	} else {
		fmt.Println("FAILED: high error rate")
	}
	fmt.Println("=========================================")

	results := map[string]interface{}{
		"messages_sent":      sent,
		"messages_received":  recv,
		"errors":             errs,
		"throughput_per_sec": throughput,
		"config": map[string]interface{}{
			"clients":  config.NumClients,
			"pawns":    config.NumPawns,
			"interval": config.ActionInterval.String(),
			"duration": config.TestDuration.String(),
		},
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	os.WriteFile("agitator_results.json", jsonData, 0644)
	fmt.Println("\nResults saved to agitator_results.json")
}
