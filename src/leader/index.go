package leader

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yashkumarverma/cronx/src/utils"
	"github.com/yashkumarverma/cronx/src/utils/cache"
)

// PodManager handles pod registration and presence updates
type PodManager struct {
	client *cache.Client
	logger *utils.StandardLogger
	config *utils.Config
	now    func() time.Time

	mu   sync.Mutex
	info *PodInfo
}

// NewPodManager creates a new pod manager instance
func NewPodManager(client *cache.Client, logger *utils.StandardLogger, config *utils.Config) *PodManager {
	return &PodManager{
		client: client,
		logger: logger,
		config: config,
		now:    time.Now,
	}
}

// Initialize gives the pod its ID and registers it. Presence is kept up by
// Run.
func (pm *PodManager) Initialize(ctx context.Context) error {
	if pm.client == nil || pm.logger == nil || pm.config == nil {
		return fmt.Errorf("pod manager not properly initialized: missing required dependencies")
	}

	// Get pod ID from config or generate new one
	podID := pm.config.PodID
	if podID == "" {
		podID = uuid.New().String()
	}

	now := pm.now()
	pm.mu.Lock()
	pm.info = &PodInfo{
		ID:        podID,
		StartTime: now,
		LastSeen:  now,
		Status:    "active",
	}
	pm.mu.Unlock()

	if err := pm.updatePresence(ctx); err != nil {
		return fmt.Errorf("failed to register pod: %w", err)
	}

	pm.logger.Infow("Pod manager initialized", "pod_id", podID)
	return nil
}

// Run refreshes the pod's presence until ctx is done.
func (pm *PodManager) Run(ctx context.Context) {
	interval := pm.config.PodTTL / 2
	if interval <= 0 {
		interval = pm.config.PodTTL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := pm.updatePresence(ctx); err != nil {
				pm.logger.Errorw("Failed to update presence", "error", err)
			}
		}
	}
}

// updatePresence stamps the pod as seen and prunes dead pods from the registry
func (pm *PodManager) updatePresence(ctx context.Context) error {
	pm.mu.Lock()
	if pm.info == nil {
		pm.mu.Unlock()
		return fmt.Errorf("pod info not initialized")
	}
	pm.info.LastSeen = pm.now()
	info := *pm.info
	pm.mu.Unlock()

	pods, err := pm.getPods(ctx)
	if err != nil {
		return err
	}
	pods = livePods(pods, info.LastSeen, pm.config.PodTTL)
	pods[info.ID] = info

	if err := pm.client.SetJSONWithExpiry(ctx, PodRegistryKey, pods, registryTTL); err != nil {
		return fmt.Errorf("failed to store pods: %w", err)
	}

	ids := byStartTime(pods)
	pm.logger.Debugw("Active pods", "count", len(ids), "pods", strings.Join(ids, ","), "leader", ids[0])
	return nil
}

// Deregister removes the pod from the registry so the next leader takes
// over without waiting for the presence TTL.
func (pm *PodManager) Deregister(ctx context.Context) error {
	info, err := pm.self()
	if err != nil {
		return err
	}
	pods, err := pm.getPods(ctx)
	if err != nil {
		return err
	}
	delete(pods, info.ID)
	if err := pm.client.SetJSONWithExpiry(ctx, PodRegistryKey, pods, registryTTL); err != nil {
		return fmt.Errorf("failed to store pods: %w", err)
	}
	return nil
}

func (pm *PodManager) self() (PodInfo, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.info == nil {
		return PodInfo{}, fmt.Errorf("pod info not initialized")
	}
	return *pm.info, nil
}

// getPods retrieves all registered pods from Redis
func (pm *PodManager) getPods(ctx context.Context) (map[string]PodInfo, error) {
	var pods map[string]PodInfo
	if err := pm.client.GetJSON(ctx, PodRegistryKey, &pods); err != nil {
		return nil, fmt.Errorf("failed to get pods: %w", err)
	}
	if pods == nil {
		return make(map[string]PodInfo), nil
	}
	return pods, nil
}

// GetPodID returns the current pod's ID
func (pm *PodManager) GetPodID() string {
	info, err := pm.self()
	if err != nil {
		return ""
	}
	return info.ID
}

// ListPods returns the live pods, oldest first.
func (pm *PodManager) ListPods(ctx context.Context) ([]string, error) {
	pods, err := pm.getPods(ctx)
	if err != nil {
		return nil, err
	}
	return byStartTime(livePods(pods, pm.now(), pm.config.PodTTL)), nil
}

// GetLeader returns the ID of the current leader pod, "" when no pod is alive
func (pm *PodManager) GetLeader(ctx context.Context) (string, error) {
	pods, err := pm.getPods(ctx)
	if err != nil {
		return "", err
	}
	return electLeader(livePods(pods, pm.now(), pm.config.PodTTL)), nil
}

// IsLeader checks if the current pod is the leader
func (pm *PodManager) IsLeader(ctx context.Context) (bool, error) {
	info, err := pm.self()
	if err != nil {
		return false, err
	}

	leaderID, err := pm.GetLeader(ctx)
	if err != nil {
		return false, err
	}
	return leaderID == info.ID, nil
}
