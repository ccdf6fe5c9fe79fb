package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"helios/app/pkg/logger"
	"helios/app/pkg/types"
)

// DefaultGateway fans messages from every registered channel into the
// agent and routes each reply back to the channel it came from.
type DefaultGateway struct {
	agent    types.Agent
	channels map[string]types.Channel
	mu       sync.RWMutex

	processedMessages uint64
	lastMessageUnix   atomic.Int64
	startedUnix       atomic.Int64
}

type HealthStatus struct {
	Started            bool
	StartedAt          time.Time
	RegisteredChannels []string
	AgentName          string
	ProcessedMessages  uint64
	LastMessageAt      time.Time
}

func NewGateway(agent types.Agent) *DefaultGateway {
	return &DefaultGateway{
		agent:    agent,
		channels: make(map[string]types.Channel),
	}
}

func (g *DefaultGateway) RegisterChannel(c types.Channel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.channels[c.ID()] = c
	logger.Info("registered channel: %s", c.ID())
}

func (g *DefaultGateway) Start(ctx context.Context) error {
	var wg sync.WaitGroup
	g.startedUnix.Store(time.Now().Unix())

	handler := func(msg types.Message) {
		atomic.AddUint64(&g.processedMessages, 1)
		g.lastMessageUnix.Store(time.Now().Unix())
		logger.Debug("received message channel=%s user=%s", msg.ChannelID, msg.UserID)

		reply, err := g.agent.Process(ctx, msg)
		if err != nil {
			logger.Error("processing failed: %v", err)
			reply = types.Message{
				Content:   "Something went wrong: " + err.Error(),
				Role:      "assistant",
				ChannelID: msg.ChannelID,
				UserID:    msg.UserID,
				SessionID: msg.SessionID,
				RequestID: msg.RequestID,
			}
		}
		g.sendReply(ctx, reply)
	}

	g.mu.RLock()
	for _, c := range g.channels {
		wg.Add(1)
		go func(ch types.Channel) {
			defer wg.Done()
			if err := ch.Start(ctx, handler); err != nil {
				logger.Error("channel %s error: %v", ch.ID(), err)
			}
		}(c)
	}
	g.mu.RUnlock()

	logger.Info("gateway started all channels")
	wg.Wait()
	return nil
}

func (g *DefaultGateway) sendReply(ctx context.Context, reply types.Message) {
	g.mu.RLock()
	ch, ok := g.channels[reply.ChannelID]
	g.mu.RUnlock()
	if !ok {
		logger.Debug("no channel registered for reply: %s", reply.ChannelID)
		return
	}
	if err := ch.Send(ctx, reply); err != nil {
		logger.Error("send to channel %s failed: %v", reply.ChannelID, err)
	}
}

// Health reports gateway runtime state for the status endpoint.
func (g *DefaultGateway) Health() HealthStatus {
	g.mu.RLock()
	names := make([]string, 0, len(g.channels))
	for id := range g.channels {
		names = append(names, id)
	}
	g.mu.RUnlock()

	status := HealthStatus{
		RegisteredChannels: names,
		ProcessedMessages:  atomic.LoadUint64(&g.processedMessages),
	}
	if g.agent != nil {
		status.AgentName = g.agent.Name()
	}
	if started := g.startedUnix.Load(); started > 0 {
		status.Started = true
		status.StartedAt = time.Unix(started, 0)
	}
	if last := g.lastMessageUnix.Load(); last > 0 {
		status.LastMessageAt = time.Unix(last, 0)
	}
	return status
}
