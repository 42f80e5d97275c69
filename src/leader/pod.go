package leader

import (
	"sort"
	"time"
)

const (
	// PodRegistryKey holds the JSON map of pods by ID
	PodRegistryKey = "cronx:pods"
	// registryTTL bounds how long an abandoned registry survives
	registryTTL = 24 * time.Hour
)

// PodInfo represents information about a running pod
type PodInfo struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	LastSeen  time.Time `json:"last_seen"`
	Status    string    `json:"status"`
}

// livePods drops pods that haven't been seen for longer than ttl
func livePods(pods map[string]PodInfo, now time.Time, ttl time.Duration) map[string]PodInfo {
	live := make(map[string]PodInfo, len(pods))
	for id, info := range pods {
		if now.Sub(info.LastSeen) <= ttl {
			live[id] = info
		}
	}
	return live
}

// byStartTime orders pod IDs oldest first, ties broken by ID.
func byStartTime(pods map[string]PodInfo) []string {
	ids := make([]string, 0, len(pods))
	for id := range pods {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := pods[ids[i]], pods[ids[j]]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return ids[i] < ids[j]
	})
	return ids
}

// electLeader returns the oldest pod, or "" when there is none.
func electLeader(pods map[string]PodInfo) string {
	ids := byStartTime(pods)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
